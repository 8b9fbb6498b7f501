// simulator.go exposes the simulation engine to the operator: current engine
// state and the on-demand attack burst.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/simulator"
)

// SimulatorHandlers handles simulation control endpoints
type SimulatorHandlers struct {
	engine *simulator.Simulator
}

// NewSimulatorHandlers creates a new SimulatorHandlers instance
func NewSimulatorHandlers(engine *simulator.Simulator) *SimulatorHandlers {
	return &SimulatorHandlers{engine: engine}
}

// @Summary      Simulator status
// @Description  Returns the engine's configuration and whether a spike window is currently active.
// @Tags         Simulator
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  simulator.Status
// @Router       /api/v1/admin/simulator/status [get]
// StatusHandler reports the simulation engine state
// GET /api/v1/admin/simulator/status
func (h *SimulatorHandlers) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.engine.CurrentStatus())
	}
}

// @Summary      Trigger attack simulation
// @Description  Schedules a scripted bulk-download burst against every bait file link and returns immediately. The burst itself plays out in the background.
// @Tags         Simulator
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  simulator.AttackResult
// @Failure      500  {object}  simulator.AttackResult
// @Router       /api/v1/admin/simulate-attack [post]
// SimulateAttackHandler kicks off an attack burst
// POST /api/v1/admin/simulate-attack
func (h *SimulatorHandlers) SimulateAttackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := h.engine.InjectAttack(c.Request.Context())

		status := http.StatusOK
		if !result.Success {
			status = http.StatusInternalServerError
		}
		c.JSON(status, result)
	}
}
