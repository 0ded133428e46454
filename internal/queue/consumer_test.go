package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	groupErr error
	streams  []redis.XStream
	readErr  error
	pending  []redis.XPendingExt
	claimed  map[string]redis.XMessage
	acked    []string
	claims   []string
}

func (f *fakeClient) XGroupCreateMkStream(ctx context.Context, _, _, _ string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", f.groupErr)
}

func (f *fakeClient) XReadGroup(ctx context.Context, _ *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	return redis.NewXStreamSliceCmdResult(f.streams, f.readErr)
}

func (f *fakeClient) XAck(ctx context.Context, _, _ string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

func (f *fakeClient) XPendingExt(ctx context.Context, _ *redis.XPendingExtArgs) *redis.XPendingExtCmd {
	cmd := redis.NewXPendingExtCmd(ctx)
	cmd.SetVal(f.pending)
	return cmd
}

func (f *fakeClient) XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd {
	var out []redis.XMessage
	for _, id := range a.Messages {
		f.claims = append(f.claims, id)
		if msg, ok := f.claimed[id]; ok {
			out = append(out, msg)
		}
	}
	return redis.NewXMessageSliceCmdResult(out, nil)
}

type recordingHandler struct {
	seen []string
	fail map[string]bool
}

func (h *recordingHandler) Handle(_ context.Context, msg redis.XMessage) error {
	h.seen = append(h.seen, msg.ID)
	if h.fail[msg.ID] {
		return errors.New("boom")
	}
	return nil
}

func newTestConsumer(client StreamClient, handler MessageHandler) *Consumer {
	return NewConsumer(client, "workforce:maintenance", "workers", "w1", time.Minute, zerolog.Nop(), handler)
}

func TestReadAcksFailedMessages(t *testing.T) {
	client := &fakeClient{streams: []redis.XStream{{
		Stream: "workforce:maintenance",
		Messages: []redis.XMessage{
			{ID: "1-0", Values: map[string]interface{}{"type": "cleanup"}},
			{ID: "2-0", Values: map[string]interface{}{"type": "email_purge"}},
		},
	}}}
	handler := &recordingHandler{fail: map[string]bool{"2-0": true}}

	require.NoError(t, newTestConsumer(client, handler).read(context.Background()))
	assert.Equal(t, []string{"1-0", "2-0"}, handler.seen)
	assert.Equal(t, []string{"1-0", "2-0"}, client.acked)
}

func TestReadLeavesInterruptedMessagesPending(t *testing.T) {
	client := &fakeClient{streams: []redis.XStream{{
		Stream:   "workforce:maintenance",
		Messages: []redis.XMessage{{ID: "1-0", Values: map[string]interface{}{"type": "cleanup"}}},
	}}}
	handler := &recordingHandler{fail: map[string]bool{"1-0": true}}
	consumer := newTestConsumer(client, handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	consumer.process(ctx, client.streams[0].Messages[0])

	assert.Equal(t, []string{"1-0"}, handler.seen)
	assert.Empty(t, client.acked)
}

func TestReadTreatsNilAsEmpty(t *testing.T) {
	client := &fakeClient{readErr: redis.Nil}
	handler := &recordingHandler{}

	require.NoError(t, newTestConsumer(client, handler).read(context.Background()))
	assert.Empty(t, handler.seen)
}

func TestClaimStalledSkipsFreshEntries(t *testing.T) {
	client := &fakeClient{
		pending: []redis.XPendingExt{
			{ID: "1-0", Idle: 2 * time.Minute},
			{ID: "2-0", Idle: time.Second},
		},
		claimed: map[string]redis.XMessage{
			"1-0": {ID: "1-0", Values: map[string]interface{}{"type": "cleanup"}},
		},
	}
	handler := &recordingHandler{}

	require.NoError(t, newTestConsumer(client, handler).claimStalled(context.Background()))
	assert.Equal(t, []string{"1-0"}, client.claims)
	assert.Equal(t, []string{"1-0"}, handler.seen)
	assert.Equal(t, []string{"1-0"}, client.acked)
}

func TestEnsureGroupToleratesExistingGroup(t *testing.T) {
	client := &fakeClient{groupErr: errors.New("BUSYGROUP Consumer Group name already exists")}
	require.NoError(t, newTestConsumer(client, &recordingHandler{}).EnsureGroup(context.Background()))

	client.groupErr = errors.New("NOAUTH Authentication required")
	require.Error(t, newTestConsumer(client, &recordingHandler{}).EnsureGroup(context.Background()))
}
