package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
)

type StoreService struct {
	repo repository.StoreRepository
}

func NewStoreService(repo repository.StoreRepository) *StoreService {
	return &StoreService{repo: repo}
}

func (s *StoreService) List(ctx context.Context, search string) ([]domain.Store, error) {
	return s.repo.ListStores(ctx, search)
}

func (s *StoreService) Create(ctx context.Context, name, storeID string) (*domain.Store, error) {
	store, err := buildStore("", name, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) Update(ctx context.Context, id, name, storeID string) (*domain.Store, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	store, err := buildStore(id, name, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	return s.repo.DeleteStore(ctx, id)
}

func buildStore(id, name, storeID string) (*domain.Store, error) {
	name, storeID = strings.TrimSpace(name), strings.TrimSpace(storeID)
	if name == "" || storeID == "" {
		return nil, fmt.Errorf("%w: name and storeId are required", ErrInvalidInput)
	}
	return &domain.Store{ID: id, Name: name, StoreID: storeID}, nil
}
