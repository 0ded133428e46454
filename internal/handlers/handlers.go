package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"workforce/internal/config"
	"workforce/internal/middleware"
	"workforce/internal/models"
	"workforce/internal/repository"
	"workforce/internal/security"
	"workforce/internal/service"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Log            zerolog.Logger
	Environment    string
	Tokens         *security.TokenIssuer
	UserLookup     middleware.UserLookup
	Auth           *service.AuthService
	Users          *service.UserService
	Timestamps     *service.TimestampService
	Letters        *service.LetterService
	Documents      *service.DocumentService
	RateLimit      config.RateLimitConfig
	MaxUploadBytes int64
	Checks         map[string]HealthCheck
}

type HandlerSet struct {
	log         zerolog.Logger
	environment string
	tokens      *security.TokenIssuer
	userLookup  middleware.UserLookup
	auth        *service.AuthService
	users       *service.UserService
	timestamps  *service.TimestampService
	letters     *service.LetterService
	documents   *service.DocumentService
	rateLimit   config.RateLimitConfig
	maxUpload   int64
	checks      map[string]HealthCheck
	now         func() time.Time
}

func NewHandlerSet(d Deps) HandlerSet {
	return HandlerSet{
		log:         d.Log,
		environment: d.Environment,
		tokens:      d.Tokens,
		userLookup:  d.UserLookup,
		auth:        d.Auth,
		users:       d.Users,
		timestamps:  d.Timestamps,
		letters:     d.Letters,
		documents:   d.Documents,
		rateLimit:   d.RateLimit,
		maxUpload:   d.MaxUploadBytes,
		checks:      d.Checks,
		now:         time.Now,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Auth(h.tokens, h.userLookup)
	admin := middleware.RequireAdmin()
	limited := middleware.RateLimit(h.rateLimit.RequestsPerMinute, h.rateLimit.Burst)
	ownsUser := middleware.RequireOwnerOrAdmin(middleware.OwnerParam("id"))
	ownsTimestamp := middleware.RequireOwnerOrAdmin(h.timestampOwner)

	user := router.Group("/user")
	{
		user.POST("/signup", limited, h.Signup)
		user.POST("/login", limited, h.Login)

		user.Use(authed)
		user.GET("/me", h.Me)
		user.GET("", admin, h.ListUsers)
		user.GET("/role/:role", admin, h.ListUsersByRole)
		user.GET("/:id", ownsUser, h.GetUser)
		user.PUT("/:id", ownsUser, h.UpdateUser)
		user.PATCH("/verify/:id", admin, h.VerifyUser)
		user.PATCH("/unverify/:id", admin, h.UnverifyUser)
		user.PATCH("/changerole/:id", admin, h.ChangeRole)
		user.PATCH("/changerequest/:id", ownsUser, h.ChangeRequest)
		user.DELETE("/:id", middleware.RequireRoles(models.UserRoleSuperAdmin), h.DeleteUser)
	}

	timestamp := router.Group("/timestamp", authed)
	{
		timestamp.POST("", h.CreateTimestamp(""))
		timestamp.POST("/in", h.CreateTimestamp(models.DirectionIn))
		timestamp.POST("/out", h.CreateTimestamp(models.DirectionOut))
		timestamp.GET("/in", admin, h.ListTimestamps(models.DirectionIn))
		timestamp.GET("/out", admin, h.ListTimestamps(models.DirectionOut))
		timestamp.GET("/user/:id", ownsUser, h.UserTimestamps)
		timestamp.DELETE("/:id", ownsTimestamp, h.DeleteTimestamp)
		timestamp.DELETE("/:id/image", ownsTimestamp, h.DeleteTimestampImage)
	}

	letters := router.Group("/letters", authed)
	{
		letters.POST("", h.CreateLetter)
		letters.GET("", admin, h.ListLetters)
		letters.PATCH("/:id", admin, h.UpdateLetter)
	}

	email := router.Group("/email", authed, admin)
	{
		email.POST("/send", h.SendEmail(service.StoreLetterEmail))
		email.POST("/send-id", h.SendEmail(service.IDCardEmail))
	}

	docs := router.Group("/documents", authed, admin)
	{
		docs.POST("/letter/:id", h.GenerateLetter)
		docs.POST("/id/:id", h.GenerateIDCard)
	}
}

func (h HandlerSet) timestampOwner(c *gin.Context) (string, error) {
	ts, err := h.timestamps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTimestampNotFound) {
			return "", fmt.Errorf("%w: %s", middleware.ErrResourceNotFound, err)
		}
		return "", err
	}
	return ts.UserID, nil
}

func currentUser(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// formFile opens an optional multipart file. A missing file yields nil so the
// service can report which field is absent. Call the returned closer when done.
func formFile(c *gin.Context, field string) (*service.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s: %w", field, err)
	}
	return &service.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  f,
	}, func() { _ = f.Close() }, nil
}

// readAttachment loads an optional multipart file fully into memory, bounded by limit.
func readAttachment(c *gin.Context, field string, limit int64) (*models.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if limit > 0 && header.Size > limit {
		return nil, &service.ValidationError{Field: field, Message: service.ErrFileTooLarge.Error()}
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if limit > 0 {
		reader = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, &service.ValidationError{Field: field, Message: service.ErrFileTooLarge.Error()}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return &models.Attachment{Name: header.Filename, MimeType: mimeType, Data: data}, nil
}
