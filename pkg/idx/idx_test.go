package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	require.True(t, a.String() < b.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("roundtrips a generated id", func(t *testing.T) {
		id := New()
		parsed, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Parse("not-a-ulid")
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := Parse("  ")
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
	require.True(t, ID("garbage").Time().IsZero())
}
