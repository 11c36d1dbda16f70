package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/service/trains"
)

type TrainHandler struct {
	service trains.TrainUseCase
}

func NewTrainHandler(service trains.TrainUseCase) *TrainHandler {
	return &TrainHandler{service: service}
}

func (h *TrainHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:train_no", h.get)
}

func (h *TrainHandler) list(c *gin.Context) {
	filter := domain.TrainFilter{
		Source:      c.Query("source"),
		Destination: c.Query("destination"),
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TrainHandler) get(c *gin.Context) {
	trainNo, err := parseID(c, "train_no")
	if err != nil {
		writeError(c, err)
		return
	}
	train, err := h.service.GetByNumber(c.Request.Context(), trainNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, train)
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}
