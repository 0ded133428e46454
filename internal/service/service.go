package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"workforce/internal/mailer"
	"workforce/internal/media/sniffer"
	"workforce/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountUnverified  = errors.New("account is not verified yet")
	ErrFileTooLarge       = errors.New("file exceeds the upload limit")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError reports input rejected before any side effect took place.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	SetVerified(ctx context.Context, id string, verified bool) (models.User, error)
	SetRole(ctx context.Context, id string, role models.UserRole) (models.User, error)
	SetRequest(ctx context.Context, id string, kind models.RequestKind, until *time.Time) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
	Delete(ctx context.Context, id string) error
	ClearExpiredRequests(ctx context.Context, now time.Time) (int64, error)
}

type TimestampStore interface {
	Create(ctx context.Context, ts models.Timestamp) (models.Timestamp, error)
	GetByID(ctx context.Context, id string) (models.Timestamp, error)
	ListByDirection(ctx context.Context, direction models.Direction) ([]models.Timestamp, error)
	ListByUser(ctx context.Context, userID string) ([]models.Timestamp, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Timestamp, error)
	RemovePicture(ctx context.Context, id, pictureURL string) (models.Timestamp, error)
	Delete(ctx context.Context, id string) error
}

type LetterStore interface {
	Create(ctx context.Context, letter models.Letter) (models.Letter, error)
	List(ctx context.Context) ([]models.Letter, error)
	UpdateStatus(ctx context.Context, id string, status models.LetterStatus, adminNote string) (models.Letter, error)
}

type EmailStore interface {
	Create(ctx context.Context, entry models.EmailLog) (models.EmailLog, error)
	UpdateStatus(ctx context.Context, id string, status models.EmailStatus, errText string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type MailSender interface {
	Send(msg mailer.Message) error
}

type TemplateFiller interface {
	Fill(template []byte, values map[string]string) ([]byte, error)
}

// FileUpload is one file of a multipart request.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type image struct {
	data []byte
	mime string
}

// readImage loads an uploaded image, accepting only JPEG, PNG and GIF content up to maxBytes.
func readImage(field string, f *FileUpload, maxBytes int64) (image, error) {
	if f == nil || f.Content == nil {
		return image{}, invalid(field, "file is required")
	}
	if maxBytes > 0 && f.Size > maxBytes {
		return image{}, invalid(field, "%s", ErrFileTooLarge)
	}

	result, head, err := sniffer.Detect(f.Content)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnsupportedType) {
			return image{}, invalid(field, "%s", err)
		}
		return image{}, fmt.Errorf("read %s: %w", field, err)
	}

	rest := f.Content
	if maxBytes > 0 {
		rest = io.LimitReader(f.Content, maxBytes-int64(len(head))+1)
	}
	tail, err := io.ReadAll(rest)
	if err != nil {
		return image{}, fmt.Errorf("read %s: %w", field, err)
	}

	data := append(head, tail...)
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return image{}, invalid(field, "%s", ErrFileTooLarge)
	}
	return image{data: data, mime: result.MIME}, nil
}

func (img image) reader() io.Reader {
	return bytes.NewReader(img.data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("gender", oneOfStrings(models.Genders))
	_ = v.RegisterValidation("position", oneOfStrings(models.Positions))
	_ = v.RegisterValidation("govidtype", oneOfStrings(models.GovernmentIDTypes))
	return v
}

func oneOfStrings[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

// validateStruct runs the struct tags and converts the first failure into a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "email":
		return invalid(field, "must be a valid email address")
	case "min":
		return invalid(field, "must be at least %s characters", fe.Param())
	case "datetime":
		return invalid(field, "must be a date formatted YYYY-MM-DD")
	default:
		return invalid(field, "has an invalid value %q", fmt.Sprint(fe.Value()))
	}
}

const dateLayout = "2006-01-02"

func parseDate(value string) time.Time {
	t, _ := time.Parse(dateLayout, value)
	return t
}
