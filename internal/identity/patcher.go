package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/storage"
)

// PositionSource resolves a player's position set by stable id.
type PositionSource interface {
	PlayerPosition(ctx context.Context, playerID string) (models.PositionSet, error)
}

// Patcher backfills unknown positions in the identity cache from an
// external lookup. A failed lookup skips that player and leaves the cached
// record untouched; the next run retries it.
type Patcher struct {
	repo   storage.DocumentRepository[Cache]
	source PositionSource
	logger *logrus.Logger
}

func NewPatcher(repo storage.DocumentRepository[Cache], source PositionSource, logger *logrus.Logger) *Patcher {
	return &Patcher{repo: repo, source: source, logger: logger}
}

// Patch fills in missing positions and reports how many records changed.
func (p *Patcher) Patch(ctx context.Context) (int, error) {
	cache, err := p.repo.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load identity cache: %w", err)
	}

	patched := 0
	for name, record := range cache {
		if !record.Positions.IsEmpty() || record.PlayerID == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return patched, err
		}

		positions, err := p.source.PlayerPosition(ctx, record.PlayerID)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"stage":  "identity_patch",
				"player": name,
			}).Warn("Position lookup failed, skipping player")
			continue
		}
		if positions.IsEmpty() {
			continue
		}

		record.Positions = positions
		cache[name] = record
		patched++
		p.logger.WithFields(logrus.Fields{
			"stage":    "identity_patch",
			"player":   name,
			"position": positions.Code(),
		}).Info("Backfilled position")
	}

	if patched > 0 {
		if err := p.repo.Save(cache); err != nil {
			return patched, fmt.Errorf("failed to save identity cache: %w", err)
		}
	}
	return patched, nil
}
