package service

import (
	"context"
	"strings"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type FoodItemService struct {
	foods database.Collection
}

func NewFoodItemService(foods database.Collection) *FoodItemService {
	return &FoodItemService{foods: foods}
}

func (s *FoodItemService) Create(ctx context.Context, item *model.FoodItem) (*database.InsertResult, error) {
	if err := validateStruct(item); err != nil {
		return nil, err
	}
	item.ID = ""
	res, err := s.foods.InsertOne(ctx, item)
	if err != nil {
		return nil, storageErr("insert food item", err)
	}
	return res, nil
}

func (s *FoodItemService) List(ctx context.Context) ([]model.FoodItem, error) {
	items := []model.FoodItem{}
	if err := s.foods.Find(ctx, database.Filter{}, &items); err != nil {
		return nil, storageErr("list food items", err)
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

// Update sets the name and price of the food item with the given id. When
// upsert is false a missing id yields ErrNotFound along with the zero-count
// result.
func (s *FoodItemService) Update(ctx context.Context, id string, upd *model.FoodItemUpdate, upsert bool) (*database.UpdateResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	if err := validateStruct(upd); err != nil {
		return nil, err
	}
	res, err := s.foods.UpdateOne(ctx, database.ByID(id), upd.Patch(), upsert)
	if err != nil {
		return nil, storageErr("update food item", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return res, ErrNotFound
	}
	return res, nil
}

func (s *FoodItemService) Delete(ctx context.Context, id string) (*database.DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	res, err := s.foods.DeleteOne(ctx, database.ByID(id))
	if err != nil {
		return nil, storageErr("delete food item", err)
	}
	if res.DeletedCount == 0 {
		return res, ErrNotFound
	}
	return res, nil
}
