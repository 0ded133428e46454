package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/models"
	"workforce/internal/service"
)

// SendEmail mails an uploaded document. The attachment is optional.
func (h HandlerSet) SendEmail(kind service.EmailKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		attachment, err := readAttachment(c, "file", h.maxUpload)
		if err != nil {
			respondError(c, err)
			return
		}

		entry, err := h.documents.SendEmail(c.Request.Context(), kind, c.PostForm("to"), attachment)
		h.respondEmail(c, entry, err)
	}
}

// respondEmail reports a delivery. A failed send still carries the audit row ID.
func (h HandlerSet) respondEmail(c *gin.Context, entry models.EmailLog, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		body := gin.H{"error": err.Error()}
		if entry.ID != "" {
			body["emailId"] = entry.ID
			body["status"] = string(entry.Status)
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, emailResponse{
		Message: "email sent successfully",
		EmailID: entry.ID,
		Status:  string(entry.Status),
	})
}
