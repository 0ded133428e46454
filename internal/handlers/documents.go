package handlers

import (
	"github.com/gin-gonic/gin"
)

func (h HandlerSet) GenerateLetter(c *gin.Context) {
	template, err := readAttachment(c, "template", h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}
	var data []byte
	if template != nil {
		data = template.Data
	}

	entry, err := h.documents.SendLetter(c.Request.Context(), c.Param("id"), data, c.PostForm("role"))
	h.respondEmail(c, entry, err)
}

func (h HandlerSet) GenerateIDCard(c *gin.Context) {
	entry, err := h.documents.SendIDCard(c.Request.Context(), c.Param("id"))
	h.respondEmail(c, entry, err)
}
