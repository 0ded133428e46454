package documents

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lukasjarosch/go-docx"

	"workforce/internal/models"
)

const DocxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var ErrEmptyTemplate = errors.New("template is empty")

//go:embed templates/id_card.docx
var defaultIDTemplate []byte

// Filler replaces {key} placeholders in a .docx template.
type Filler struct{}

func (Filler) Fill(template []byte, values map[string]string) ([]byte, error) {
	if len(template) == 0 {
		return nil, ErrEmptyTemplate
	}

	doc, err := docx.OpenBytes(template)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer doc.Close()

	placeholders := make(docx.PlaceholderMap, len(values))
	for k, v := range values {
		placeholders[k] = v
	}
	if err := doc.ReplaceAll(placeholders); err != nil {
		return nil, fmt.Errorf("replace placeholders: %w", err)
	}

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return out.Bytes(), nil
}

// LoadTemplate reads a template asset from disk.
func LoadTemplate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return data, nil
}

// LoadIDTemplate reads the ID card template at path, or returns the bundled one when path is empty.
func LoadIDTemplate(path string) ([]byte, error) {
	if path == "" {
		return bytes.Clone(defaultIDTemplate), nil
	}
	return LoadTemplate(path)
}

// LetterValues are the placeholders of the store intro letter.
func LetterValues(user models.User, role string) map[string]string {
	if role == "" {
		role = string(user.Position)
	}
	return map[string]string{
		"name": user.FullName(),
		"role": role,
	}
}

// IDCardValues are the placeholders of the company ID card. The card expires on the same
// calendar day validityYears after issuedAt.
func IDCardValues(user models.User, issuedAt time.Time, validityYears int) map[string]string {
	return map[string]string{
		"FullName":   user.FullName(),
		"expiryDate": issuedAt.AddDate(validityYears, 0, 0).Format("01/02/2006"),
		"Address":    user.CompleteAddress,
		"contactNum": user.GCashNumber,
		"role":       string(user.Position),
		"company_id": user.CompanyID,
	}
}

func LetterFilename(user models.User) string {
	return fmt.Sprintf("%s_Letter.docx", fileSafe(user.FullName()))
}

func IDCardFilename(user models.User) string {
	return fmt.Sprintf("%s_ID.docx", fileSafe(user.FullName()))
}

func fileSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ' || r == '_':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "document"
	}
	return string(out)
}
