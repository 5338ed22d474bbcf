package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/pkg/idx"
)

func TestHousekeepingPrunesOldHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	personas := newPersonaService(t)
	first := seedUser(t, personas, "user-1")

	append := func(t *testing.T, age time.Duration) {
		t.Helper()
		require.NoError(t, personas.Store.History().Append(ctx, domain.SwitchEntry{
			ID:          idx.New().String(),
			UserID:      "user-1",
			ToPersonaID: first.ID,
			Trigger:     domain.TriggerManual,
			CreatedAt:   time.Now().UTC().Add(-age),
		}))
	}

	append(t, 100*24*time.Hour)
	append(t, 91*24*time.Hour)
	append(t, time.Hour)

	svc := NewHousekeepingService(personas.Store, slog.New(slog.DiscardHandler), time.Hour, 90*24*time.Hour)

	// Start runs one cleanup pass immediately.
	svc.Start()
	svc.Stop()

	entries, err := svc.Store.History().ListByUser(ctx, "user-1", 50)
	require.NoError(t, err)

	// The two backdated entries are gone; the recent one and the entry from
	// initialization remain.
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Greater(t, e.CreatedAt, time.Now().UTC().Add(-90*24*time.Hour))
	}
}

func TestHousekeepingDefaults(t *testing.T) {
	t.Parallel()

	svc := NewHousekeepingService(nil, slog.New(slog.DiscardHandler), 0, -1)
	require.Equal(t, time.Hour, svc.Interval)
	require.Equal(t, 90*24*time.Hour, svc.Retention)
}
