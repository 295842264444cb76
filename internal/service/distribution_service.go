package service

import (
	"context"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type DistributionService struct {
	distributions database.Collection
}

func NewDistributionService(distributions database.Collection) *DistributionService {
	return &DistributionService{distributions: distributions}
}

func (s *DistributionService) Create(ctx context.Context, d *model.Distribution) (*database.InsertResult, error) {
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	d.ID = ""
	res, err := s.distributions.InsertOne(ctx, d)
	if err != nil {
		return nil, storageErr("insert distribution", err)
	}
	return res, nil
}

func (s *DistributionService) List(ctx context.Context) ([]model.Distribution, error) {
	out := []model.Distribution{}
	if err := s.distributions.Find(ctx, database.Filter{}, &out); err != nil {
		return nil, storageErr("list distributions", err)
	}
	if out == nil {
		out = []model.Distribution{}
	}
	return out, nil
}
