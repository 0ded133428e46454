package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/mailer"
	"workforce/internal/models"
	"workforce/internal/repository"
	"workforce/internal/storage"
)

var testLog = zerolog.Nop()

const testBucket = "workforce"

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failPut  bool
	maxPuts  int
	puts     int
	failKeys map[string]bool
	removed  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, failKeys: map[string]bool{}}
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut || (f.maxPuts > 0 && f.puts >= f.maxPuts) {
		return "", errors.New("storage unavailable")
	}
	f.puts++
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return storage.PublicURL("http://cdn.test", testBucket, key), nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	if f.failKeys[key] {
		return errors.New("remove failed")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) KeyFromURL(rawURL string) (string, bool) {
	return storage.KeyFromURL(testBucket, rawURL)
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]models.User
	seq       int
	failWrite bool
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return models.User{}, errors.New("db down")
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	f.seq++
	user.CompanyID = fmt.Sprintf("VP%04d", f.seq)
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) update(id string, fn func(*models.User)) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	fn(&u)
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) SetVerified(_ context.Context, id string, verified bool) (models.User, error) {
	return f.update(id, func(u *models.User) { u.Verified = verified })
}

func (f *fakeUsers) SetRole(_ context.Context, id string, role models.UserRole) (models.User, error) {
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUsers) SetRequest(_ context.Context, id string, kind models.RequestKind, until *time.Time) (models.User, error) {
	return f.update(id, func(u *models.User) {
		if kind == models.RequestID {
			u.RequestIDUntil = until
		} else {
			u.RequestLetterUntil = until
		}
	})
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user models.User) (models.User, error) {
	if f.failWrite {
		return models.User{}, errors.New("db down")
	}
	return f.update(user.ID, func(u *models.User) { *u = user })
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) ClearExpiredRequests(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, u := range f.byID {
		changed := false
		if u.RequestLetterUntil != nil && !u.RequestLetterUntil.After(now) {
			u.RequestLetterUntil = nil
			changed = true
		}
		if u.RequestIDUntil != nil && !u.RequestIDUntil.After(now) {
			u.RequestIDUntil = nil
			changed = true
		}
		if changed {
			f.byID[id] = u
			n++
		}
	}
	return n, nil
}

type fakeTimestamps struct {
	mu        sync.Mutex
	byID      map[string]models.Timestamp
	failWrite bool
}

func newFakeTimestamps(items ...models.Timestamp) *fakeTimestamps {
	f := &fakeTimestamps{byID: map[string]models.Timestamp{}}
	for _, ts := range items {
		f.byID[ts.ID] = ts
	}
	return f
}

func (f *fakeTimestamps) Create(_ context.Context, ts models.Timestamp) (models.Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return models.Timestamp{}, errors.New("db down")
	}
	f.byID[ts.ID] = ts
	return ts, nil
}

func (f *fakeTimestamps) GetByID(_ context.Context, id string) (models.Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.byID[id]
	if !ok {
		return models.Timestamp{}, repository.ErrTimestampNotFound
	}
	return ts, nil
}

func (f *fakeTimestamps) filter(keep func(models.Timestamp) bool) []models.Timestamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Timestamp, 0)
	for _, ts := range f.byID {
		if keep(ts) {
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeTimestamps) ListByDirection(_ context.Context, direction models.Direction) ([]models.Timestamp, error) {
	return f.filter(func(ts models.Timestamp) bool { return ts.Direction == direction }), nil
}

func (f *fakeTimestamps) ListByUser(_ context.Context, userID string) ([]models.Timestamp, error) {
	return f.filter(func(ts models.Timestamp) bool { return ts.UserID == userID }), nil
}

func (f *fakeTimestamps) ListExpired(_ context.Context, now time.Time) ([]models.Timestamp, error) {
	return f.filter(func(ts models.Timestamp) bool { return ts.Expired(now) }), nil
}

func (f *fakeTimestamps) RemovePicture(_ context.Context, id, pictureURL string) (models.Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.byID[id]
	if !ok {
		return models.Timestamp{}, repository.ErrTimestampNotFound
	}
	kept := make([]string, 0, len(ts.Pictures))
	found := false
	for _, p := range ts.Pictures {
		if p == pictureURL {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return models.Timestamp{}, repository.ErrPictureNotFound
	}
	ts.Pictures = kept
	f.byID[id] = ts
	return ts, nil
}

func (f *fakeTimestamps) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrTimestampNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeLetters struct {
	mu   sync.Mutex
	byID map[string]models.Letter
}

func newFakeLetters() *fakeLetters {
	return &fakeLetters{byID: map[string]models.Letter{}}
}

func (f *fakeLetters) Create(_ context.Context, letter models.Letter) (models.Letter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[letter.ID] = letter
	return letter, nil
}

func (f *fakeLetters) List(_ context.Context) ([]models.Letter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Letter, 0, len(f.byID))
	for _, l := range f.byID {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLetters) UpdateStatus(_ context.Context, id string, status models.LetterStatus, note string) (models.Letter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return models.Letter{}, repository.ErrLetterNotFound
	}
	l.Status = status
	l.AdminNote = note
	f.byID[id] = l
	return l, nil
}

type fakeEmails struct {
	mu   sync.Mutex
	logs []models.EmailLog
}

func (f *fakeEmails) Create(_ context.Context, entry models.EmailLog) (models.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.logs = append(f.logs, entry)
	return entry, nil
}

func (f *fakeEmails) UpdateStatus(_ context.Context, id string, status models.EmailStatus, errText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.logs {
		if f.logs[i].ID == id {
			f.logs[i].Status = status
			f.logs[i].Error = errText
			return nil
		}
	}
	return errors.New("no such email log")
}

func (f *fakeEmails) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.logs[:0]
	var n int64
	for _, l := range f.logs {
		if !l.CreatedAt.After(cutoff) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return n, nil
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMail) Send(msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeFiller renders "key=value" lines so tests can read what was substituted.
type fakeFiller struct{}

func (fakeFiller) Fill(template []byte, values map[string]string) ([]byte, error) {
	if !bytes.HasPrefix(template, []byte("TEMPLATE")) {
		return nil, errors.New("not a docx file")
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, values[k])
	}
	return []byte(b.String()), nil
}

var (
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x01}, 64)...)
	pdfBytes  = []byte("%PDF-1.7 not an image")
)

func upload(name string, data []byte) *FileUpload {
	return &FileUpload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
