package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createLetterRequest struct {
	Type string `json:"type"`
}

func (h HandlerSet) CreateLetter(c *gin.Context) {
	var req createLetterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	letter, err := h.letters.Create(c.Request.Context(), currentUser(c).ID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newLetterResponse(letter))
}

func (h HandlerSet) ListLetters(c *gin.Context) {
	letters, err := h.letters.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]letterResponse, 0, len(letters))
	for _, l := range letters {
		resp = append(resp, newLetterResponse(l))
	}
	c.JSON(http.StatusOK, resp)
}

type updateLetterRequest struct {
	Status    string `json:"status" binding:"required"`
	AdminNote string `json:"adminNote"`
}

func (h HandlerSet) UpdateLetter(c *gin.Context) {
	var req updateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	letter, err := h.letters.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLetterResponse(letter))
}
