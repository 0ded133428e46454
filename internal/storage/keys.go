package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"workforce/internal/models"
)

// RequiredDocumentKey is where signup documents for a user live.
func RequiredDocumentKey(email, filename string, at time.Time) string {
	return fmt.Sprintf("users/%s/required/%d-%s", email, at.UnixMilli(), cleanName(filename))
}

// UploadKey is where an attendance photo lives. Untagged uploads sit directly under uploads/.
func UploadKey(email string, direction models.Direction, filename string, at time.Time) string {
	if direction == models.DirectionNone {
		return fmt.Sprintf("users/%s/uploads/%d-%s", email, at.UnixMilli(), cleanName(filename))
	}
	return fmt.Sprintf("users/%s/uploads/%s/%d-%s", email, direction, at.UnixMilli(), cleanName(filename))
}

func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
