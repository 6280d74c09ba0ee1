package service

import (
	"context"
	"errors"
	"imagestudio/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_ListNewestFirst(t *testing.T) {
	store := &fakeHistory{records: map[string][]domain.HistoryRecord{
		domain.HistoryPath("uid"): {
			{ImageURL: "http://img/old", CreatedAt: 100},
			{ImageURL: "http://img/new", CreatedAt: 300},
			{ImageURL: "http://img/mid", CreatedAt: 200},
		},
		domain.HistoryPath("other"): {
			{ImageURL: "http://img/other", CreatedAt: 999},
		},
	}}

	records, err := NewHistoryService(store).List(context.Background(), "uid")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "http://img/new", records[0].ImageURL)
	assert.Equal(t, "http://img/mid", records[1].ImageURL)
	assert.Equal(t, "http://img/old", records[2].ImageURL)
}

func TestHistoryService_ListEmpty(t *testing.T) {
	records, err := NewHistoryService(&fakeHistory{}).List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryService_ListError(t *testing.T) {
	_, err := NewHistoryService(&fakeHistory{err: errors.New("boom")}).List(context.Background(), "uid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
