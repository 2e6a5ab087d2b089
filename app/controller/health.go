package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	httpdto "github.com/vibast-solutions/ms-go-user/app/dto/http"
)

const healthCheckTimeout = 2 * time.Second

type pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db pinger
}

func NewHealthController(db pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Health(ctx echo.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		logrus.WithError(err).Error("Health check failed: database unreachable")
		return ctx.JSON(http.StatusServiceUnavailable, httpdto.Error("Service Unavailable"))
	}

	return ctx.JSON(http.StatusOK, httpdto.Success(httpdto.MessageData{Message: "Server is healthy"}, "OK"))
}
