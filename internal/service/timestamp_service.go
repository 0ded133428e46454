package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/ids"
	"workforce/internal/metrics"
	"workforce/internal/models"
	"workforce/internal/storage"
)

type TimestampService struct {
	timestamps TimestampStore
	store      ObjectStorage
	retention  time.Duration
	maxUpload  int64
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

func NewTimestampService(
	timestamps TimestampStore,
	store ObjectStorage,
	retention time.Duration,
	maxUpload int64,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TimestampService {
	return &TimestampService{
		timestamps: timestamps,
		store:      store,
		retention:  retention,
		maxUpload:  maxUpload,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

type CreateTimestampInput struct {
	UserID    string
	Email     string
	Direction models.Direction
	Picture   *FileUpload
}

type CreateTimestampResult struct {
	Timestamp  models.Timestamp
	PictureURL string
}

// Create stores the photo and records it as a new attendance entry expiring
// one retention window after creation.
func (s *TimestampService) Create(ctx context.Context, input CreateTimestampInput) (CreateTimestampResult, error) {
	if !input.Direction.Valid() {
		return CreateTimestampResult{}, invalid("type", "must be in or out")
	}
	img, err := readImage("picture", input.Picture, s.maxUpload)
	if err != nil {
		return CreateTimestampResult{}, err
	}

	now := s.now().UTC()
	key := storage.UploadKey(input.Email, input.Direction, input.Picture.Filename, now)
	url, err := s.store.Put(ctx, key, img.reader(), int64(len(img.data)), img.mime)
	if err != nil {
		return CreateTimestampResult{}, fmt.Errorf("upload picture: %w", err)
	}

	ts, err := s.timestamps.Create(ctx, models.Timestamp{
		ID:        ids.New(),
		UserID:    input.UserID,
		Direction: input.Direction,
		Pictures:  []string{url},
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.metrics.StorageDeleteFailed("timestamp_create")
			s.log.Error().Err(rmErr).Str("key", key).Msg("remove orphaned picture failed")
		}
		return CreateTimestampResult{}, fmt.Errorf("save timestamp: %w", err)
	}

	return CreateTimestampResult{Timestamp: ts, PictureURL: url}, nil
}

func (s *TimestampService) Get(ctx context.Context, id string) (models.Timestamp, error) {
	return s.timestamps.GetByID(ctx, id)
}

// ListByDirection returns tagged entries, newest first.
func (s *TimestampService) ListByDirection(ctx context.Context, direction models.Direction) ([]models.Timestamp, error) {
	if direction != models.DirectionIn && direction != models.DirectionOut {
		return nil, invalid("type", "must be in or out")
	}
	return s.timestamps.ListByDirection(ctx, direction)
}

func (s *TimestampService) ListByUser(ctx context.Context, userID string) ([]models.Timestamp, error) {
	return s.timestamps.ListByUser(ctx, userID)
}

// DeletePicture drops one photo from an entry and then removes the stored object.
func (s *TimestampService) DeletePicture(ctx context.Context, id, pictureURL string) (models.Timestamp, error) {
	if pictureURL == "" {
		return models.Timestamp{}, invalid("imageUrl", "is required")
	}
	ts, err := s.timestamps.RemovePicture(ctx, id, pictureURL)
	if err != nil {
		return models.Timestamp{}, err
	}
	removePictures(ctx, s.store, s.metrics, s.log, "timestamp_picture", []string{pictureURL})
	return ts, nil
}

// Delete removes every photo of the entry, best effort, then the entry itself.
func (s *TimestampService) Delete(ctx context.Context, id string) error {
	ts, err := s.timestamps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	removePictures(ctx, s.store, s.metrics, s.log, "timestamp_delete", ts.Pictures)
	return s.timestamps.Delete(ctx, id)
}

// removePictures deletes the objects behind urls, logging and counting failures without stopping.
func removePictures(ctx context.Context, store ObjectStorage, m *metrics.Metrics, log zerolog.Logger, source string, urls []string) int {
	failed := 0
	for _, url := range urls {
		key, ok := store.KeyFromURL(url)
		if !ok {
			failed++
			m.StorageDeleteFailed(source)
			log.Warn().Str("url", url).Msg("picture url does not point into the bucket")
			continue
		}
		if err := store.Remove(ctx, key); err != nil {
			failed++
			m.StorageDeleteFailed(source)
			log.Error().Err(err).Str("key", key).Msg("remove picture failed")
		}
	}
	return failed
}
