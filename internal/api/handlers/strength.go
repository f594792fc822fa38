package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/utils"
)

type StrengthHandler struct {
	strength  *strength.Builder
	snapshots *storage.SnapshotStore
}

func NewStrengthHandler(strengthBuilder *strength.Builder, snapshots *storage.SnapshotStore) *StrengthHandler {
	return &StrengthHandler{strength: strengthBuilder, snapshots: snapshots}
}

// GetStrength returns the current opponent strength cache with per-position
// rankings.
func (h *StrengthHandler) GetStrength(c *gin.Context) {
	cache, err := h.strength.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.SendNotFound(c, "Strength cache not built yet")
			return
		}
		utils.SendInternalError(c, "Failed to load strength cache")
		return
	}

	utils.SendSuccess(c, gin.H{
		"scores":   cache,
		"rankings": cache.Rankings(),
	})
}

// GetLatestSnapshot returns the most recent archived strength document.
func (h *StrengthHandler) GetLatestSnapshot(c *gin.Context) {
	snap, err := h.snapshots.Latest()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.SendNotFound(c, "No strength snapshots archived yet")
			return
		}
		utils.SendInternalError(c, "Failed to load strength snapshot")
		return
	}

	utils.SendSuccessWithMeta(c, snap.Document, &utils.Meta{
		BuiltAt: snap.BuiltAt.Format("2006-01-02T15:04:05Z"),
		RunID:   snap.RunID,
	})
}
