package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/ids"
	"workforce/internal/models"
	"workforce/internal/repository"
	"workforce/internal/security"
	"workforce/internal/storage"
)

type AuthService struct {
	users     UserStore
	store     ObjectStorage
	tokens    *security.TokenIssuer
	maxUpload int64
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users UserStore, store ObjectStorage, tokens *security.TokenIssuer, maxUpload int64, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		store:     store,
		tokens:    tokens,
		maxUpload: maxUpload,
		log:       log,
		now:       time.Now,
	}
}

type SignupInput struct {
	Email                   string `json:"email" form:"email" validate:"required,email"`
	Password                string `json:"password" form:"password" validate:"required,min=6"`
	FirstName               string `json:"firstName" form:"firstName" validate:"required"`
	MiddleName              string `json:"middleName" form:"middleName"`
	LastName                string `json:"lastName" form:"lastName" validate:"required"`
	Gender                  string `json:"gender" form:"gender" validate:"required,gender"`
	Position                string `json:"position" form:"position" validate:"required,position"`
	CompleteAddress         string `json:"completeAddress" form:"completeAddress" validate:"required"`
	Birthdate               string `json:"birthdate" form:"birthdate" validate:"required,datetime=2006-01-02"`
	NBIRegistrationDate     string `json:"nbiRegistrationDate" form:"nbiRegistrationDate" validate:"required,datetime=2006-01-02"`
	NBIExpirationDate       string `json:"nbiExpirationDate" form:"nbiExpirationDate" validate:"required,datetime=2006-01-02"`
	FitToWorkExpirationDate string `json:"fitToWorkExpirationDate" form:"fitToWorkExpirationDate" validate:"required,datetime=2006-01-02"`
	GovernmentIDType        string `json:"governmentIdType" form:"governmentIdType" validate:"required,govidtype"`
	GCashNumber             string `json:"gcashNumber" form:"gcashNumber" validate:"required,numeric"`
	GCashName               string `json:"gcashName" form:"gcashName" validate:"required"`

	ProfileImage *FileUpload `json:"-" form:"-"`
	NBIClearance *FileUpload `json:"-" form:"-"`
	FitToWork    *FileUpload `json:"-" form:"-"`
	GovernmentID *FileUpload `json:"-" form:"-"`
}

type AuthResult struct {
	User  models.User
	Token string
}

// Signup validates every field and file before anything is written. Uploaded
// documents are removed again if the user row cannot be stored.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}

	docs := []struct {
		field    string
		upload   *FileUpload
		optional bool
	}{
		{field: "nbiClearance", upload: input.NBIClearance},
		{field: "fitToWork", upload: input.FitToWork},
		{field: "governmentId", upload: input.GovernmentID},
		{field: "profileImage", upload: input.ProfileImage, optional: true},
	}

	images := make([]image, len(docs))
	for i, doc := range docs {
		if doc.optional && doc.upload == nil {
			continue
		}
		img, err := readImage(doc.field, doc.upload, s.maxUpload)
		if err != nil {
			return AuthResult{}, err
		}
		images[i] = img
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, invalid("email", "email already in use")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:                      ids.New(),
		Email:                   input.Email,
		PasswordHash:            passwordHash,
		Role:                    models.UserRoleUser,
		FirstName:               strings.TrimSpace(input.FirstName),
		MiddleName:              strings.TrimSpace(input.MiddleName),
		LastName:                strings.TrimSpace(input.LastName),
		Gender:                  models.Gender(input.Gender),
		Position:                models.Position(input.Position),
		CompleteAddress:         strings.TrimSpace(input.CompleteAddress),
		Birthdate:               parseDate(input.Birthdate),
		NBIRegistrationDate:     parseDate(input.NBIRegistrationDate),
		NBIExpirationDate:       parseDate(input.NBIExpirationDate),
		FitToWorkExpirationDate: parseDate(input.FitToWorkExpirationDate),
		GovernmentIDType:        models.GovernmentIDType(input.GovernmentIDType),
		GCashNumber:             input.GCashNumber,
		GCashName:               strings.TrimSpace(input.GCashName),
	}
	targets := []*string{&user.NBIClearance, &user.FitToWork, &user.GovernmentID, &user.ProfileImage}

	uploaded := make([]string, 0, len(docs))
	now := s.now()
	for i, doc := range docs {
		if images[i].data == nil {
			continue
		}
		key := storage.RequiredDocumentKey(user.Email, doc.upload.Filename, now)
		url, err := s.store.Put(ctx, key, images[i].reader(), int64(len(images[i].data)), images[i].mime)
		if err != nil {
			s.discard(ctx, uploaded)
			return AuthResult{}, fmt.Errorf("upload %s: %w", doc.field, err)
		}
		uploaded = append(uploaded, key)
		*targets[i] = url
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.discard(ctx, uploaded)
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, invalid("email", "email already in use")
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(created.ID, created.Email, string(created.Role))
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", created.ID).Str("company_id", created.CompanyID).Msg("user signed up")
	return AuthResult{User: created, Token: token}, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.Verified {
		return AuthResult{}, ErrAccountUnverified
	}

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("remove orphaned upload failed")
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
