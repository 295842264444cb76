package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type FoodItemService interface {
	Create(ctx context.Context, item *model.FoodItem) (*database.InsertResult, error)
	List(ctx context.Context) ([]model.FoodItem, error)
	Update(ctx context.Context, id string, upd *model.FoodItemUpdate, upsert bool) (*database.UpdateResult, error)
	Delete(ctx context.Context, id string) (*database.DeleteResult, error)
}

type FoodItemHandler struct {
	foodItemService FoodItemService
}

func NewFoodItemHandler(foodItemService FoodItemService) *FoodItemHandler {
	return &FoodItemHandler{foodItemService: foodItemService}
}

func (h *FoodItemHandler) CreateFoodItem(w http.ResponseWriter, r *http.Request) {
	var item model.FoodItem
	if !decodeJSON(w, r, &item) {
		return
	}
	res, err := h.foodItemService.Create(r.Context(), &item)
	writeResult(w, r, http.StatusCreated, res, err)
}

func (h *FoodItemHandler) ListFoodItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.foodItemService.List(r.Context())
	writeResult(w, r, http.StatusOK, items, err)
}

// UpdateFoodItem edits name and price. Pass ?upsert=true to create the item
// when the id does not exist.
func (h *FoodItemHandler) UpdateFoodItem(w http.ResponseWriter, r *http.Request) {
	var upd model.FoodItemUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	res, err := h.foodItemService.Update(r.Context(), mux.Vars(r)["id"], &upd, upsertRequested(r))
	writeResult(w, r, http.StatusOK, res, err)
}

func (h *FoodItemHandler) DeleteFoodItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.foodItemService.Delete(r.Context(), mux.Vars(r)["id"])
	writeResult(w, r, http.StatusOK, res, err)
}
