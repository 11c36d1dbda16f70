package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railbooking/railbooking/internal/domain"
)

// PaymentLookup is satisfied by repository.PaymentRepository.
type PaymentLookup interface {
	GetByPNR(ctx context.Context, pnr, userID int64) (*domain.Payment, error)
}

type PaymentHandler struct {
	payments PaymentLookup
}

func NewPaymentHandler(payments PaymentLookup) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.GET("/pnr/:pnr", h.byPNR)
}

func (h *PaymentHandler) byPNR(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	pnr, err := parseID(c, "pnr")
	if err != nil {
		writeError(c, err)
		return
	}

	payment, err := h.payments.GetByPNR(c.Request.Context(), pnr, identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
