package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fastbreakhq/fastbreak/internal/services"
	"github.com/fastbreakhq/fastbreak/pkg/utils"
)

type PredictionsHandler struct {
	boards *services.BoardService
}

func NewPredictionsHandler(boards *services.BoardService) *PredictionsHandler {
	return &PredictionsHandler{boards: boards}
}

// GetTomorrow returns the prediction board for tomorrow's slate.
func (h *PredictionsHandler) GetTomorrow(c *gin.Context) {
	target := time.Now().UTC().AddDate(0, 0, 1)
	h.serveBoard(c, target)
}

// GetByDate returns the prediction board for an explicit date.
func (h *PredictionsHandler) GetByDate(c *gin.Context) {
	target, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", err.Error())
		return
	}
	h.serveBoard(c, target)
}

func (h *PredictionsHandler) serveBoard(c *gin.Context, target time.Time) {
	board, err := h.boards.BoardFor(c.Request.Context(), target)
	if err != nil {
		utils.SendServiceUnavailable(c, "Prediction board unavailable: "+err.Error())
		return
	}
	utils.SendSuccessWithMeta(c, board, &utils.Meta{TargetDay: board.TargetDate})
}
