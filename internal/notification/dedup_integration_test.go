//go:build integration

package notification

import (
	"context"
	"os"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"structnotify/internal/logger"
)

func setupRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	ctx := context.Background()

	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}

	container, err := redismodule.Run(ctx, "redis:8.4.0-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redisclient.ParseURL(uri)
	require.NoError(t, err)

	client := redisclient.NewClient(opt)
	t.Cleanup(func() {
		client.Close()
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(pingCtx).Err())

	return client
}

func TestDeliveryMarkerSuppress(t *testing.T) {
	client := setupRedis(t)
	marker := NewDeliveryMarker(client, time.Hour, logger.NopLogger())
	ctx := context.Background()

	events := []Event{
		{ID: "p1:tasks:1:2024-01-10", Full: "a"},
		{ID: "p1:tasks:2:2024-01-11", Full: "b"},
	}

	first := marker.Suppress(ctx, events)
	assert.Len(t, first, 2)

	// The same identities are already claimed on the second pass.
	second := marker.Suppress(ctx, events)
	assert.Empty(t, second)

	// A new identity still passes through.
	third := marker.Suppress(ctx, []Event{{ID: "p2:tasks:1:2024-01-10", Full: "c"}})
	assert.Len(t, third, 1)
}
