package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workforce/internal/metrics"
	"workforce/internal/service"
)

// Task names carried in the "type" field of a stream entry.
const (
	Cleanup      = "cleanup"
	EmailPurge   = "email_purge"
	RequestReset = "request_reset"
)

type Maintenance interface {
	SweepTimestamps(ctx context.Context) (service.SweepReport, error)
	PurgeEmailLogs(ctx context.Context) (int64, error)
	ResetRequests(ctx context.Context) (int64, error)
}

type Processor struct {
	maintenance Maintenance
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

type TaskPayload struct {
	Type string `json:"type"`
}

func NewProcessor(maintenance Maintenance, m *metrics.Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		maintenance: maintenance,
		metrics:     m,
		logger:      logger,
	}
}

// Handle runs the task named by a stream entry. Unknown types are dropped so
// they do not sit in the pending list forever.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return p.Run(ctx, payload.Type)
}

func (p *Processor) Run(ctx context.Context, task string) error {
	var err error
	switch task {
	case Cleanup:
		err = p.handleCleanup(ctx)
	case EmailPurge:
		err = p.handleEmailPurge(ctx)
	case RequestReset:
		err = p.handleRequestReset(ctx)
	default:
		p.logger.Warn().Str("type", task).Msg("unknown task type")
		return nil
	}
	p.metrics.TaskFinished(task, err)
	return err
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleCleanup(ctx context.Context) error {
	report, err := p.maintenance.SweepTimestamps(ctx)
	if err != nil {
		return fmt.Errorf("sweep timestamps: %w", err)
	}
	if report.RecordErrors > 0 {
		return fmt.Errorf("sweep timestamps: %d records could not be deleted", report.RecordErrors)
	}
	return nil
}

func (p *Processor) handleEmailPurge(ctx context.Context) error {
	_, err := p.maintenance.PurgeEmailLogs(ctx)
	return err
}

func (p *Processor) handleRequestReset(ctx context.Context) error {
	_, err := p.maintenance.ResetRequests(ctx)
	return err
}
