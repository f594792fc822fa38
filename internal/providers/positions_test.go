package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerPositionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2544", r.URL.Query().Get("playerId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"player": {"personId": "2544", "position": "Forward-Guard"}}`))
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	client := NewPositionClient(srv.URL, time.Millisecond, time.Second, 3, log)

	set, err := client.PlayerPosition(context.Background(), "2544")
	require.NoError(t, err)
	assert.Equal(t, "G-F", set.Code(), "set comes back in canonical order")
}

func TestPlayerPositionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	client := NewPositionClient(srv.URL, time.Millisecond, time.Second, 3, log)

	_, err := client.PlayerPosition(context.Background(), "2544")
	assert.Error(t, err)
}

func TestPlayerPositionBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	client := NewPositionClient(srv.URL, time.Millisecond, time.Second, 3, log)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := client.PlayerPosition(ctx, "2544")
		require.Error(t, err)
	}

	// Breaker is open now; calls fail fast without hitting the server.
	_, err := client.PlayerPosition(ctx, "2544")
	assert.Error(t, err)
}

func TestPlayerPositionBreakerThresholdConfigurable(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	client := NewPositionClient(srv.URL, time.Millisecond, time.Second, 1, log)

	ctx := context.Background()
	_, err := client.PlayerPosition(ctx, "2544")
	require.Error(t, err)

	// A threshold of one opens the breaker after a single failure.
	_, err = client.PlayerPosition(ctx, "2544")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 1, hits)
}
