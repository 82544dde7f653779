package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/build"
)

type SystemHandlersParams struct {
	fx.In
}

func NewSystemHandlers(params SystemHandlersParams) *SystemHandlers {
	return &SystemHandlers{}
}

type SystemHandlers struct{}

// Health is the liveness probe endpoint.
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": build.Version,
	})
}
