package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats StatsSource
}

func NewStatsHandler(stats StatsSource) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Summary())
}
