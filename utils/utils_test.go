package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, VerifyPassword("s3cret", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("s3cret", "not-a-hash"))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	assert.True(t, rl.Allow("ip"))
	assert.Equal(t, 1, rl.GetRemaining("ip"))
	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))
	assert.True(t, rl.Allow("other"))
	assert.Equal(t, 0, rl.GetRemaining("ip"))
}

func TestMetricsSnapshot(t *testing.T) {
	m := newMetrics()
	m.RecordRequest(10*time.Millisecond, false)
	m.RecordRequest(30*time.Millisecond, true)
	m.RecordImport(4, 1, 0)
	m.RecordNotification(nil)
	m.RecordNotification(errors.New("provider down"))
	m.RecordOperation("import.customers", nil)

	snap := m.GetMetricsSnapshot()
	assert.Equal(t, int64(2), snap["total_requests"])
	assert.Equal(t, int64(1), snap["failed_requests"])
	assert.Equal(t, int64(20), snap["average_latency_ms"])
	assert.Equal(t, int64(4), snap["imported_rows"])
	assert.Equal(t, int64(1), snap["skipped_rows"])
	assert.Equal(t, int64(1), snap["notifications_sent"])
	assert.Equal(t, int64(1), snap["notifications_failed"])
	assert.Equal(t, int64(2), snap["error_count"])
	assert.Equal(t, map[string]int64{"import.customers": 1}, snap["operations"])
}
