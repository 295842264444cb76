package handler

import (
	"context"
	"net/http"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type DistributionService interface {
	Create(ctx context.Context, d *model.Distribution) (*database.InsertResult, error)
	List(ctx context.Context) ([]model.Distribution, error)
}

type DistributionHandler struct {
	distributionService DistributionService
}

func NewDistributionHandler(distributionService DistributionService) *DistributionHandler {
	return &DistributionHandler{distributionService: distributionService}
}

func (h *DistributionHandler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	var d model.Distribution
	if !decodeJSON(w, r, &d) {
		return
	}
	res, err := h.distributionService.Create(r.Context(), &d)
	writeResult(w, r, http.StatusCreated, res, err)
}

func (h *DistributionHandler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	list, err := h.distributionService.List(r.Context())
	writeResult(w, r, http.StatusOK, list, err)
}
