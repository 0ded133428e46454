package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"workforce/internal/mailer"
	"workforce/internal/models"
	"workforce/internal/repository"
	"workforce/internal/storage"
)

const testBucket = "workforce"

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return storage.PublicURL("http://cdn.test", testBucket, key), nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) KeyFromURL(rawURL string) (string, bool) {
	return storage.KeyFromURL(testBucket, rawURL)
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
	seq  int
}

func (m *memUsers) Create(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	m.seq++
	user.CompanyID = fmt.Sprintf("VP%04d", m.seq)
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	return m.ListByRole(context.Background(), "")
}

func (m *memUsers) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.byID))
	for _, u := range m.byID {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) update(id string, fn func(*models.User)) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	fn(&u)
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) SetVerified(_ context.Context, id string, verified bool) (models.User, error) {
	return m.update(id, func(u *models.User) { u.Verified = verified })
}

func (m *memUsers) SetRole(_ context.Context, id string, role models.UserRole) (models.User, error) {
	return m.update(id, func(u *models.User) { u.Role = role })
}

func (m *memUsers) SetRequest(_ context.Context, id string, kind models.RequestKind, until *time.Time) (models.User, error) {
	return m.update(id, func(u *models.User) {
		if kind == models.RequestID {
			u.RequestIDUntil = until
		} else {
			u.RequestLetterUntil = until
		}
	})
}

func (m *memUsers) UpdateProfile(_ context.Context, user models.User) (models.User, error) {
	return m.update(user.ID, func(u *models.User) { *u = user })
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) ClearExpiredRequests(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memTimestamps struct {
	mu   sync.Mutex
	byID map[string]models.Timestamp
}

func (m *memTimestamps) Create(_ context.Context, ts models.Timestamp) (models.Timestamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[ts.ID] = ts
	return ts, nil
}

func (m *memTimestamps) GetByID(_ context.Context, id string) (models.Timestamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.byID[id]
	if !ok {
		return models.Timestamp{}, repository.ErrTimestampNotFound
	}
	return ts, nil
}

func (m *memTimestamps) filter(keep func(models.Timestamp) bool) []models.Timestamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Timestamp, 0)
	for _, ts := range m.byID {
		if keep(ts) {
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memTimestamps) ListByDirection(_ context.Context, d models.Direction) ([]models.Timestamp, error) {
	return m.filter(func(ts models.Timestamp) bool { return ts.Direction == d }), nil
}

func (m *memTimestamps) ListByUser(_ context.Context, userID string) ([]models.Timestamp, error) {
	return m.filter(func(ts models.Timestamp) bool { return ts.UserID == userID }), nil
}

func (m *memTimestamps) ListExpired(_ context.Context, now time.Time) ([]models.Timestamp, error) {
	return m.filter(func(ts models.Timestamp) bool { return ts.Expired(now) }), nil
}

func (m *memTimestamps) RemovePicture(_ context.Context, id, pictureURL string) (models.Timestamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.byID[id]
	if !ok {
		return models.Timestamp{}, repository.ErrTimestampNotFound
	}
	kept := make([]string, 0, len(ts.Pictures))
	for _, p := range ts.Pictures {
		if p != pictureURL {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(ts.Pictures) {
		return models.Timestamp{}, repository.ErrPictureNotFound
	}
	ts.Pictures = kept
	m.byID[id] = ts
	return ts, nil
}

func (m *memTimestamps) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrTimestampNotFound
	}
	delete(m.byID, id)
	return nil
}

type memLetters struct {
	mu   sync.Mutex
	byID map[string]models.Letter
}

func (m *memLetters) Create(_ context.Context, letter models.Letter) (models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[letter.ID] = letter
	return letter, nil
}

func (m *memLetters) List(_ context.Context) ([]models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Letter, 0, len(m.byID))
	for _, l := range m.byID {
		out = append(out, l)
	}
	return out, nil
}

func (m *memLetters) UpdateStatus(_ context.Context, id string, status models.LetterStatus, note string) (models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return models.Letter{}, repository.ErrLetterNotFound
	}
	l.Status = status
	l.AdminNote = note
	m.byID[id] = l
	return l, nil
}

type memEmails struct {
	mu   sync.Mutex
	logs []models.EmailLog
}

func (m *memEmails) Create(_ context.Context, entry models.EmailLog) (models.EmailLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, entry)
	return entry, nil
}

func (m *memEmails) UpdateStatus(_ context.Context, id string, status models.EmailStatus, errText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs[i].Status = status
			m.logs[i].Error = errText
			return nil
		}
	}
	return errors.New("no such email log")
}

func (m *memEmails) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memMail struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *memMail) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type echoFiller struct{}

func (echoFiller) Fill(template []byte, values map[string]string) ([]byte, error) {
	return append(append([]byte{}, template...), []byte(values["name"])...), nil
}
