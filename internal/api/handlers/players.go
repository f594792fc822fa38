package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/models"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/pkg/utils"
)

type PlayersHandler struct {
	identity *identity.Builder
	features *storage.FeatureStore
}

func NewPlayersHandler(identityBuilder *identity.Builder, features *storage.FeatureStore) *PlayersHandler {
	return &PlayersHandler{identity: identityBuilder, features: features}
}

type playerResponse struct {
	Name    string              `json:"name"`
	Record  models.PlayerRecord `json:"record"`
	History []models.FeatureRow `json:"history"`
}

// GetPlayer returns a player's cached identity record and their feature
// history. The name parameter is "First Last", case insensitive.
func (h *PlayersHandler) GetPlayer(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		utils.SendValidationError(c, "Player name is required", "")
		return
	}

	cache, err := h.identity.Load()
	if err != nil {
		utils.SendInternalError(c, "Failed to load player cache")
		return
	}

	record, canonical, found := lookupPlayer(cache, name)
	if !found {
		utils.SendNotFound(c, "Player not found")
		return
	}

	parts := strings.SplitN(canonical, " ", 2)
	var history []models.FeatureRow
	if len(parts) == 2 {
		history, err = h.features.ByPlayer(parts[0], parts[1])
		if err != nil {
			utils.SendInternalError(c, "Failed to load player history")
			return
		}
	}

	utils.SendSuccess(c, playerResponse{Name: canonical, Record: record, History: history})
}

// lookupPlayer matches exactly first, then case-insensitively.
func lookupPlayer(cache identity.Cache, name string) (models.PlayerRecord, string, bool) {
	if record, ok := cache[name]; ok {
		return record, name, true
	}
	for key, record := range cache {
		if strings.EqualFold(key, name) {
			return record, key, true
		}
	}
	return models.PlayerRecord{}, "", false
}
