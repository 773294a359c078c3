package handler

import (
	"context"
	"net/http"
	"time"

	"expense-ledger/internal/cache"
	"expense-ledger/internal/database"

	"github.com/labstack/echo/v4"
)

const (
	statusUp   = "up"
	statusDown = "down"
)

// swagger:model PingResponse
type PingResponse struct {
	Message  string `json:"message" example:"pong"`
	Database string `json:"database" example:"up"`
	Cache    string `json:"cache" example:"up"`
}

func probe(ctx context.Context, check func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := check(ctx); err != nil {
		return statusDown
	}
	return statusUp
}

// PingHandler reports whether postgres and redis answer.
// @Summary     Health check
// @Description Both dependencies are probed on every call. Any of them down gives 503
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     503 {object} PingResponse
// @Security    BearerAuth
// @Router      /ping [get]
func PingHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		res := PingResponse{
			Message:  "pong",
			Database: probe(ctx, db.Ping),
			Cache:    probe(ctx, func(ctx context.Context) error { return cch.Ping(ctx).Err() }),
		}
		if res.Database == statusDown || res.Cache == statusDown {
			res.Message = "degraded"
			return c.JSON(http.StatusServiceUnavailable, res)
		}
		return c.JSON(http.StatusOK, res)
	}
}
