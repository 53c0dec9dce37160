package factors

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// countingProvider wraps Static and counts Lookup calls.
type countingProvider struct {
	next  Provider
	calls int
}

func (c *countingProvider) Lookup(ctx context.Context, shipmentID string) (models.RiskFactors, error) {
	c.calls++
	return c.next.Lookup(ctx, shipmentID)
}

func newTestCache(t *testing.T, next Provider, ttl time.Duration) (*CachedProvider, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedProvider(next, client, ttl), mr
}

func TestCachedProvider_ReadThrough(t *testing.T) {
	static := NewStatic(map[string]models.RiskFactors{
		"SHIP1234": {RouteRiskScore: 0.8, VendorReliable: false},
	})
	counting := &countingProvider{next: static}
	cache, _ := newTestCache(t, counting, time.Minute)

	ctx := context.Background()

	f, err := cache.Lookup(ctx, "SHIP1234")
	require.NoError(t, err)
	assert.Equal(t, 0.8, f.RouteRiskScore)
	assert.False(t, f.VendorReliable)
	assert.Equal(t, 1, counting.calls)

	// Second lookup is served from cache.
	f, err = cache.Lookup(ctx, "SHIP1234")
	require.NoError(t, err)
	assert.Equal(t, 0.8, f.RouteRiskScore)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedProvider_TTLExpiry(t *testing.T) {
	static := NewStatic(map[string]models.RiskFactors{
		"SHIP1234": {RouteRiskScore: 0.3, VendorReliable: true},
	})
	counting := &countingProvider{next: static}
	cache, mr := newTestCache(t, counting, time.Second)

	ctx := context.Background()

	_, err := cache.Lookup(ctx, "SHIP1234")
	require.NoError(t, err)
	require.Equal(t, 1, counting.calls)

	mr.FastForward(2 * time.Second)

	_, err = cache.Lookup(ctx, "SHIP1234")
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedProvider_NotFoundNotCached(t *testing.T) {
	static := NewStatic(map[string]models.RiskFactors{})
	counting := &countingProvider{next: static}
	cache, _ := newTestCache(t, counting, time.Minute)

	ctx := context.Background()

	_, err := cache.Lookup(ctx, "UNKNOWN")
	require.ErrorIs(t, err, ErrNotFound)

	// Factors appear later; the miss must not have been cached.
	static.Set("UNKNOWN", models.RiskFactors{RouteRiskScore: 0.9, VendorReliable: false})

	f, err := cache.Lookup(ctx, "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, 0.9, f.RouteRiskScore)
}

func TestCachedProvider_RedisDownFallsThrough(t *testing.T) {
	static := NewStatic(map[string]models.RiskFactors{
		"SHIP1234": {RouteRiskScore: 0.6, VendorReliable: true},
	})
	cache, mr := newTestCache(t, static, time.Minute)

	mr.Close()

	f, err := cache.Lookup(context.Background(), "SHIP1234")
	require.NoError(t, err)
	assert.Equal(t, 0.6, f.RouteRiskScore)
}

func TestStatic_Lookup(t *testing.T) {
	tests := []struct {
		name       string
		shipmentID string
		fallback   *models.RiskFactors
		wantErr    error
		wantScore  float64
	}{
		{
			name:       "known shipment",
			shipmentID: "SHIP1234",
			wantScore:  0.8,
		},
		{
			name:       "unknown shipment without fallback",
			shipmentID: "MISSING",
			wantErr:    ErrNotFound,
		},
		{
			name:       "unknown shipment with fallback",
			shipmentID: "MISSING",
			fallback:   &models.RiskFactors{RouteRiskScore: 0.5, VendorReliable: true},
			wantScore:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			static := NewStatic(map[string]models.RiskFactors{
				"SHIP1234": {RouteRiskScore: 0.8, VendorReliable: false},
			})
			if tt.fallback != nil {
				static.WithFallback(*tt.fallback)
			}

			f, err := static.Lookup(context.Background(), tt.shipmentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, f.RouteRiskScore)
		})
	}
}

func TestStatic_CancelledContext(t *testing.T) {
	static := NewStatic(map[string]models.RiskFactors{
		"SHIP1234": {RouteRiskScore: 0.8, VendorReliable: false},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := static.Lookup(ctx, "SHIP1234")
	require.ErrorIs(t, err, context.Canceled)
}
