package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fastbreakhq/fastbreak/internal/models"
)

// PositionClient fetches a player's listed position from the league stats
// API. The API rate-limits aggressively, so every call goes through a
// shared limiter and a circuit breaker; a single player's failure is the
// caller's cue to skip that player, not abort the run.
type PositionClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func NewPositionClient(baseURL string, interval time.Duration, timeout time.Duration, breakerThreshold int, logger *logrus.Logger) *PositionClient {
	if breakerThreshold < 1 {
		breakerThreshold = 1
	}
	settings := gobreaker.Settings{
		Name:    "position-api",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(breakerThreshold) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &PositionClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

type playerInfoResponse struct {
	Player struct {
		PersonID string `json:"personId"`
		Position string `json:"position"` // e.g. "Guard-Forward"
	} `json:"player"`
}

// PlayerPosition resolves one player's position set by id.
func (c *PositionClient) PlayerPosition(ctx context.Context, playerID string) (models.PositionSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchPosition(ctx, playerID)
	})
	if err != nil {
		return nil, err
	}
	return result.(models.PositionSet), nil
}

func (c *PositionClient) fetchPosition(ctx context.Context, playerID string) (models.PositionSet, error) {
	url := fmt.Sprintf("%s/commonplayerinfo?playerId=%s", c.baseURL, playerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build position request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("position lookup failed for player %s: %w", playerID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("position lookup for player %s returned %s", playerID, resp.Status)
	}

	var payload playerInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode position response for player %s: %w", playerID, err)
	}

	return SimplifyPosition(payload.Player.Position), nil
}

// SimplifyPosition maps the API's full position strings ("Guard-Forward",
// "Center") onto the canonical set.
func SimplifyPosition(raw string) models.PositionSet {
	upper := strings.ToUpper(raw)
	return models.NewPositionSet(
		strings.Contains(upper, "GUARD"),
		strings.Contains(upper, "FORWARD"),
		strings.Contains(upper, "CENTER"),
	)
}
