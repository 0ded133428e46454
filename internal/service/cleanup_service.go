package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/metrics"
	"workforce/internal/repository"
)

// CleanupService runs the maintenance sweeps. Every sweep is safe to re-run.
type CleanupService struct {
	timestamps  TimestampStore
	users       UserStore
	emails      EmailStore
	store       ObjectStorage
	emailMaxAge time.Duration
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

func NewCleanupService(
	timestamps TimestampStore,
	users UserStore,
	emails EmailStore,
	store ObjectStorage,
	emailMaxAge time.Duration,
	m *metrics.Metrics,
	log zerolog.Logger,
) *CleanupService {
	return &CleanupService{
		timestamps:  timestamps,
		users:       users,
		emails:      emails,
		store:       store,
		emailMaxAge: emailMaxAge,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

type SweepReport struct {
	Records      int
	FilesFailed  int
	RecordErrors int
}

// SweepTimestamps removes every entry whose expiry has passed. Storage failures
// are logged and the row is deleted regardless.
func (s *CleanupService) SweepTimestamps(ctx context.Context) (SweepReport, error) {
	now := s.now()
	expired, err := s.timestamps.ListExpired(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list expired timestamps: %w", err)
	}

	var report SweepReport
	for _, ts := range expired {
		report.FilesFailed += removePictures(ctx, s.store, s.metrics, s.log, "sweep", ts.Pictures)

		if err := s.timestamps.Delete(ctx, ts.ID); err != nil {
			if errors.Is(err, repository.ErrTimestampNotFound) {
				continue
			}
			report.RecordErrors++
			s.log.Error().Err(err).Str("timestamp_id", ts.ID).Msg("delete expired timestamp failed")
			continue
		}
		report.Records++
	}

	s.metrics.RecordsRemoved("timestamp", report.Records)
	s.log.Info().
		Int("expired", len(expired)).
		Int("deleted", report.Records).
		Int("file_failures", report.FilesFailed).
		Msg("timestamp sweep finished")
	return report, nil
}

// PurgeEmailLogs drops audit rows older than the retention window.
func (s *CleanupService) PurgeEmailLogs(ctx context.Context) (int64, error) {
	n, err := s.emails.DeleteOlderThan(ctx, s.now().Add(-s.emailMaxAge))
	if err != nil {
		return 0, fmt.Errorf("purge email logs: %w", err)
	}
	s.metrics.RecordsRemoved("email_log", int(n))
	if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("email logs purged")
	}
	return n, nil
}

// ResetRequests lowers request flags whose window has elapsed.
func (s *CleanupService) ResetRequests(ctx context.Context) (int64, error) {
	n, err := s.users.ClearExpiredRequests(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("reset requests: %w", err)
	}
	s.metrics.RecordsRemoved("request_flag", int(n))
	if n > 0 {
		s.log.Info().Int64("users", n).Msg("request flags reset")
	}
	return n, nil
}
