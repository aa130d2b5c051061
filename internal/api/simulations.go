package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-impact-sim/internal/models"
)

func (h *Handler) runSimulation(c *gin.Context) {
	req := models.SimulationCreate{Parameters: models.DefaultImpactParameters()}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sim, err := h.simulations.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

// bindSimulationFilter accepts asteroid_type as an alias for tag.
func bindSimulationFilter(c *gin.Context) (models.SimulationFilter, bool) {
	var filter models.SimulationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return filter, false
	}
	if filter.Tag == "" {
		filter.Tag = c.Query("asteroid_type")
	}
	return filter, true
}

func (h *Handler) listSimulations(c *gin.Context) {
	filter, ok := bindSimulationFilter(c)
	if !ok {
		return
	}

	sims, err := h.simulations.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sims)
}

func (h *Handler) simulationsGeoJSON(c *gin.Context) {
	filter, ok := bindSimulationFilter(c)
	if !ok {
		return
	}

	sims, err := h.simulations.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	fc := toGeoJSON(sims)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getSimulation(c *gin.Context) {
	sim, err := h.simulations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

func (h *Handler) updateSimulation(c *gin.Context) {
	var upd models.SimulationUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}

	sim, err := h.simulations.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

func (h *Handler) deleteSimulation(c *gin.Context) {
	if err := h.simulations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation deleted successfully"})
}

func (h *Handler) compareSimulations(c *gin.Context) {
	var ids []string
	if err := c.ShouldBindJSON(&ids); err != nil {
		respondBindError(c, err)
		return
	}

	cmp, err := h.simulations.Compare(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (h *Handler) simulationStatistics(c *gin.Context) {
	stats, err := h.simulations.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
