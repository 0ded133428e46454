package service

import (
	"context"
	"strings"

	"workforce/internal/ids"
	"workforce/internal/models"
)

const defaultLetterType = "intro"

type LetterService struct {
	letters LetterStore
}

func NewLetterService(letters LetterStore) *LetterService {
	return &LetterService{letters: letters}
}

func (s *LetterService) Create(ctx context.Context, userID, letterType string) (models.Letter, error) {
	letterType = strings.TrimSpace(letterType)
	if letterType == "" {
		letterType = defaultLetterType
	}
	return s.letters.Create(ctx, models.Letter{
		ID:     ids.New(),
		UserID: userID,
		Type:   letterType,
		Status: models.LetterStatusPending,
	})
}

func (s *LetterService) List(ctx context.Context) ([]models.Letter, error) {
	return s.letters.List(ctx)
}

func (s *LetterService) UpdateStatus(ctx context.Context, id, status, adminNote string) (models.Letter, error) {
	st := models.LetterStatus(status)
	if !st.Valid() {
		return models.Letter{}, invalid("status", "must be pending, approved or rejected")
	}
	return s.letters.UpdateStatus(ctx, id, st, strings.TrimSpace(adminNote))
}
