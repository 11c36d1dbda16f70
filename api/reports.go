package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railbooking/railbooking/internal/service/reports"
)

type ReportHandler struct {
	service reports.ReportUseCase
}

func NewReportHandler(service reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Register(router *gin.RouterGroup) {
	router.GET("/summary", h.summary)
	router.GET("/popular-trains", h.popularTrains)
}

func (h *ReportHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) popularTrains(c *gin.Context) {
	trains, err := h.service.PopularTrains(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trains)
}
