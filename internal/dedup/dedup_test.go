package dedup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

// exerciseStore runs the shared alert-suppression contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := ShouldAlert(ctx, s, "AAPL", model.SignalBuy, 150.25)
	require.NoError(t, err)
	assert.True(t, ok, "first alert is new")

	require.NoError(t, s.Remember(ctx, "AAPL", model.SignalBuy, 150.25))
	ok, err = ShouldAlert(ctx, s, "AAPL", model.SignalBuy, 150.25)
	require.NoError(t, err)
	assert.False(t, ok, "same price is suppressed")

	ok, err = ShouldAlert(ctx, s, "AAPL", model.SignalBuy, 151)
	require.NoError(t, err)
	assert.True(t, ok, "changed price re-alerts")

	ok, err = ShouldAlert(ctx, s, "AAPL", model.SignalSell, 150.25)
	require.NoError(t, err)
	assert.True(t, ok, "other signal is independent")

	require.NoError(t, s.Remember(ctx, "AAPL", model.SignalSell, 149))
	require.NoError(t, s.Remember(ctx, "MSFT", model.SignalBuy, 400))
	require.NoError(t, s.Forget(ctx, "AAPL"))

	_, found, err := s.Last(ctx, "AAPL", model.SignalBuy)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = s.Last(ctx, "AAPL", model.SignalSell)
	require.NoError(t, err)
	assert.False(t, found)

	price, found, err := s.Last(ctx, "MSFT", model.SignalBuy)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 400.0, price)

	require.NoError(t, s.Forget(ctx, "UNKNOWN"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.Equal(t, 1, s.Len())
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_alerts.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	price, ok, err := reloaded.Last(ctx, "MSFT", model.SignalBuy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 400.0, price)
	assert.Equal(t, 1, reloaded.Len())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_alerts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path)
	assert.ErrorContains(t, err, "load dedup state")
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, mr.Addr(), "", 0, "test:last:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	assert.Equal(t, "400", mr.HGet("test:last:MSFT", "BUY"))
	assert.False(t, mr.Exists("test:last:AAPL"))
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), addr, "", 0, "x:")
	assert.ErrorContains(t, err, "ping")
}
