package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth     *AuthHandler
	Trains   *TrainHandler
	Tickets  *TicketHandler
	Payments *PaymentHandler
	Reports  *ReportHandler
}

// NewRouter mounts every handler under /api.
func NewRouter(logger *slog.Logger, authenticator Authenticator, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	requireAuth := RequireAuth(authenticator)
	root := router.Group("/api")

	h.Auth.Register(root.Group("/auth"))
	h.Trains.Register(root.Group("/trains"))
	h.Tickets.Register(root.Group("/tickets"), requireAuth)
	h.Payments.Register(root.Group("/payments", requireAuth))
	h.Reports.Register(root.Group("/reports"))

	return router
}
