package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureStore struct {
	entries []*domain.AuthLogEntry
	err     error
}

func (c *captureStore) Append(_ context.Context, e *domain.AuthLogEntry) error {
	c.entries = append(c.entries, e)
	return c.err
}

func TestRecord_WritesEntry(t *testing.T) {
	store := &captureStore{}
	s := NewSink(store)

	s.Record(context.Background(), "admin@example.com", domain.ActionRequestCode,
		Meta{IP: "1.2.3.4", UserAgent: "curl/8"}, map[string]any{"expiry_minutes": 10})

	require.Len(t, store.entries, 1)
	e := store.entries[0]
	assert.Equal(t, "admin@example.com", e.Email)
	assert.Equal(t, domain.ActionRequestCode, e.Action)
	assert.Equal(t, "1.2.3.4", e.IPAddress)
	assert.Equal(t, "curl/8", e.UserAgent)
	assert.NotEmpty(t, e.LogID)
	assert.NotZero(t, e.CreatedAt)
}

// Storage failures must stay inside the sink; Record has no error to return
// and must not panic.
func TestRecord_SwallowsStoreFailure(t *testing.T) {
	store := &captureStore{err: errors.New("table unavailable")}
	s := NewSink(store)

	assert.NotPanics(t, func() {
		s.Record(context.Background(), "admin@example.com", domain.ActionVerifyFail, Meta{}, nil)
	})
}
