package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/shared/events"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewWriter struct {
	mu    sync.Mutex
	views map[string]*models.TransferView
	// failures is how many writes fail before one succeeds.
	failures int
}

func (w *fakeViewWriter) CacheTransferView(_ context.Context, view *models.TransferView) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("view store unavailable")
	}
	if w.views == nil {
		w.views = map[string]*models.TransferView{}
	}
	w.views[view.ID] = view
	return nil
}

func (w *fakeViewWriter) view(id string) (*models.TransferView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	return v, ok
}

// streamEvent mimics an event as it arrives from Redis, with Data decoded
// into a generic map.
func streamEvent(eventType string, data map[string]any) events.Event {
	return events.Event{Type: eventType, Timestamp: time.Now().UTC(), Data: data}
}

func TestTransferProjector_ProjectsCompletedTransfer(t *testing.T) {
	writer := &fakeViewWriter{}
	projector := NewTransferProjector(writer, nil)

	err := projector.HandleTransferEvent(context.Background(), streamEvent(events.TransferCompleted, map[string]any{
		"transferId":           "trf-abcdefgh12345678",
		"sourceAccountId":      1001,
		"destinationAccountId": 1002,
		"amount":               "100.5",
		"status":               "COMPLETED",
		"createdAt":            "2024-01-02T03:04:05Z",
	}))
	require.NoError(t, err)

	view, ok := writer.views["trf-abcdefgh12345678"]
	require.True(t, ok)
	assert.Equal(t, int64(1001), view.SourceAccountID)
	assert.Equal(t, int64(1002), view.DestinationAccountID)
	assert.True(t, view.Amount.Equal(dec("100.5")))
	assert.Equal(t, models.TransferCompleted, view.Status)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), view.CreatedAt)
}

func TestTransferProjector_IgnoresOtherEvents(t *testing.T) {
	writer := &fakeViewWriter{}
	projector := NewTransferProjector(writer, nil)

	err := projector.HandleTransferEvent(context.Background(), streamEvent(events.AccountCreated, map[string]any{"accountId": 1}))
	require.NoError(t, err)
	assert.Empty(t, writer.views)
}

func TestTransferProjector_RejectsMalformedEvent(t *testing.T) {
	projector := NewTransferProjector(&fakeViewWriter{}, nil)

	err := projector.HandleTransferEvent(context.Background(), streamEvent(events.TransferCompleted, map[string]any{"amount": "1"}))
	assert.ErrorIs(t, err, events.ErrMalformed)

	err = projector.HandleTransferEvent(context.Background(), streamEvent(events.TransferCompleted, map[string]any{"transferId": "trf-x", "amount": true}))
	assert.ErrorIs(t, err, events.ErrMalformed)
}

func TestTransferProjector_ReturnsWriteFailure(t *testing.T) {
	writer := &fakeViewWriter{failures: 1}
	projector := NewTransferProjector(writer, nil)
	event := streamEvent(events.TransferCompleted, map[string]any{"transferId": "trf-abcdefgh12345678", "amount": "1"})

	err := projector.HandleTransferEvent(context.Background(), event)
	require.Error(t, err)
	assert.NotErrorIs(t, err, events.ErrMalformed)

	require.NoError(t, projector.HandleTransferEvent(context.Background(), event))
	_, ok := writer.view("trf-abcdefgh12345678")
	assert.True(t, ok)
}
