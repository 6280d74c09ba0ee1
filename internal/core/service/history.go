package service

import (
	"context"
	"fmt"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"sort"
)

type HistoryService struct {
	store port.HistoryStore
}

func NewHistoryService(store port.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns the identity's history, newest first.
func (h *HistoryService) List(ctx context.Context, identity string) ([]domain.HistoryRecord, error) {
	records, err := h.store.List(ctx, domain.HistoryPath(identity))
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})

	return records, nil
}
