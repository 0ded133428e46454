package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/metrics"
	"workforce/internal/models"
	"workforce/internal/storage"
)

type UserService struct {
	users         UserStore
	timestamps    TimestampStore
	store         ObjectStorage
	requestWindow time.Duration
	maxUpload     int64
	metrics       *metrics.Metrics
	log           zerolog.Logger
	now           func() time.Time
}

func NewUserService(
	users UserStore,
	timestamps TimestampStore,
	store ObjectStorage,
	requestWindow time.Duration,
	maxUpload int64,
	m *metrics.Metrics,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:         users,
		timestamps:    timestamps,
		store:         store,
		requestWindow: requestWindow,
		maxUpload:     maxUpload,
		metrics:       m,
		log:           log,
		now:           time.Now,
	}
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	r := models.UserRole(role)
	if !r.Valid() {
		return nil, invalid("role", "unknown role %q", role)
	}
	return s.users.ListByRole(ctx, r)
}

func (s *UserService) Verify(ctx context.Context, id string) (models.User, error) {
	return s.users.SetVerified(ctx, id, true)
}

func (s *UserService) Unverify(ctx context.Context, id string) (models.User, error) {
	return s.users.SetVerified(ctx, id, false)
}

// ChangeRole sets the role of user id. Only a superAdmin may grant the
// superAdmin role or change the role of an existing superAdmin.
func (s *UserService) ChangeRole(ctx context.Context, actor models.User, id, role string) (models.User, error) {
	r := models.UserRole(role)
	if !r.Valid() {
		return models.User{}, invalid("role", "unknown role %q", role)
	}
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if actor.Role != models.UserRoleSuperAdmin && (r == models.UserRoleSuperAdmin || target.Role == models.UserRoleSuperAdmin) {
		return models.User{}, ErrForbidden
	}
	return s.users.SetRole(ctx, id, r)
}

// ChangeRequest raises or lowers a request flag. A raised flag lapses on its own after the request window.
func (s *UserService) ChangeRequest(ctx context.Context, id, kind string, active bool) (models.User, error) {
	k := models.RequestKind(kind)
	if k != models.RequestLetter && k != models.RequestID {
		return models.User{}, invalid("kind", "must be letter or id")
	}
	var until *time.Time
	if active {
		deadline := s.now().Add(s.requestWindow)
		until = &deadline
	}
	return s.users.SetRequest(ctx, id, k, until)
}

type ProfileInput struct {
	FirstName               string  `json:"firstName" form:"firstName"`
	MiddleName              *string `json:"middleName" form:"middleName"`
	LastName                string  `json:"lastName" form:"lastName"`
	Gender                  string  `json:"gender" form:"gender" validate:"omitempty,gender"`
	Position                string  `json:"position" form:"position" validate:"omitempty,position"`
	CompleteAddress         string  `json:"completeAddress" form:"completeAddress"`
	Birthdate               string  `json:"birthdate" form:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	NBIRegistrationDate     string  `json:"nbiRegistrationDate" form:"nbiRegistrationDate" validate:"omitempty,datetime=2006-01-02"`
	NBIExpirationDate       string  `json:"nbiExpirationDate" form:"nbiExpirationDate" validate:"omitempty,datetime=2006-01-02"`
	FitToWorkExpirationDate string  `json:"fitToWorkExpirationDate" form:"fitToWorkExpirationDate" validate:"omitempty,datetime=2006-01-02"`
	GovernmentIDType        string  `json:"governmentIdType" form:"governmentIdType" validate:"omitempty,govidtype"`
	GCashNumber             string  `json:"gcashNumber" form:"gcashNumber" validate:"omitempty,numeric"`
	GCashName               string  `json:"gcashName" form:"gcashName"`

	ProfileImage *FileUpload `json:"-" form:"-"`
}

// UpdateProfile applies the non-empty fields of input. Role, verification,
// email and credentials cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (models.User, error) {
	if err := validateStruct(input); err != nil {
		return models.User{}, err
	}

	var img image
	if input.ProfileImage != nil {
		var err error
		if img, err = readImage("profileImage", input.ProfileImage, s.maxUpload); err != nil {
			return models.User{}, err
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	setString(&user.FirstName, input.FirstName)
	setString(&user.LastName, input.LastName)
	if input.MiddleName != nil {
		user.MiddleName = strings.TrimSpace(*input.MiddleName)
	}
	setString(&user.CompleteAddress, input.CompleteAddress)
	setString(&user.GCashNumber, input.GCashNumber)
	setString(&user.GCashName, input.GCashName)
	if input.Gender != "" {
		user.Gender = models.Gender(input.Gender)
	}
	if input.Position != "" {
		user.Position = models.Position(input.Position)
	}
	if input.GovernmentIDType != "" {
		user.GovernmentIDType = models.GovernmentIDType(input.GovernmentIDType)
	}
	setDate(&user.Birthdate, input.Birthdate)
	setDate(&user.NBIRegistrationDate, input.NBIRegistrationDate)
	setDate(&user.NBIExpirationDate, input.NBIExpirationDate)
	setDate(&user.FitToWorkExpirationDate, input.FitToWorkExpirationDate)

	previousImage := user.ProfileImage
	var newKey string
	if img.data != nil {
		newKey = storage.RequiredDocumentKey(user.Email, input.ProfileImage.Filename, s.now())
		url, err := s.store.Put(ctx, newKey, img.reader(), int64(len(img.data)), img.mime)
		if err != nil {
			return models.User{}, fmt.Errorf("upload profileImage: %w", err)
		}
		user.ProfileImage = url
	}

	updated, err := s.users.UpdateProfile(ctx, user)
	if err != nil {
		if newKey != "" {
			s.removeKey(ctx, newKey, "profile")
		}
		return models.User{}, err
	}

	if newKey != "" && previousImage != "" {
		s.removeURL(ctx, previousImage, "profile")
	}
	return updated, nil
}

// Delete removes the account and then, best effort, every file it referenced,
// including its attendance photos.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	urls := user.FileURLs()
	timestamps, err := s.timestamps.ListByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("list timestamps: %w", err)
	}
	for _, ts := range timestamps {
		urls = append(urls, ts.Pictures...)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	for _, url := range urls {
		s.removeURL(ctx, url, "user_delete")
	}
	s.log.Info().Str("user_id", id).Int("files", len(urls)).Msg("user deleted")
	return nil
}

func (s *UserService) removeURL(ctx context.Context, url, source string) {
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		s.log.Warn().Str("url", url).Msg("url does not point into the bucket")
		return
	}
	s.removeKey(ctx, key, source)
}

func (s *UserService) removeKey(ctx context.Context, key, source string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.metrics.StorageDeleteFailed(source)
		s.log.Error().Err(err).Str("key", key).Msg("remove object failed")
	}
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func setDate(dst *time.Time, value string) {
	if value != "" {
		*dst = parseDate(value)
	}
}
