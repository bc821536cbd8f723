package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profession-server/internal/models"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), nil, fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), nil, fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("timeout talking to upstream")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustionWrapsAttemptCountAndLastError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), nil, fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, models.ErrUpstreamTransient)
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), nil, fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("Country, region, or territory not supported")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "terminal error must fail immediately")
	assert.ErrorIs(t, err, models.ErrUpstreamTerminal)
	// Сообщение дополняется подсказкой по обходу
	assert.Contains(t, err.Error(), "AI_BASE_URL")
}

func TestDo_ConfigurationErrorNotRetried(t *testing.T) {
	calls := 0
	cfgErr := models.NewConfigurationError("озвучки", "AI_API_KEY")
	_, err := Do(context.Background(), nil, fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, cfgErr
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestDo_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, nil, Config{MaxAttempts: 5, Delay: time.Second}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsTerminal(t *testing.T) {
	t.Run("geographic restriction substrings", func(t *testing.T) {
		assert.True(t, IsTerminal(errors.New("error: unsupported_country_region_territory")))
		assert.True(t, IsTerminal(errors.New("Country, region, or territory not supported")))
	})

	t.Run("transient errors", func(t *testing.T) {
		assert.False(t, IsTerminal(errors.New("rate limit exceeded")))
		assert.False(t, IsTerminal(errors.New("internal server error")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.False(t, IsTerminal(nil))
	})
}
