package command

import (
	"context"
	"errors"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	records map[string][]domain.HistoryRecord
	err     error
}

func (s *stubStore) Append(_ context.Context, path string, record domain.HistoryRecord) (string, error) {
	s.records[path] = append(s.records[path], record)
	return "id", s.err
}

func (s *stubStore) List(_ context.Context, path string) ([]domain.HistoryRecord, error) {
	return s.records[path], s.err
}

func TestHistoryRespond(t *testing.T) {
	store := &stubStore{records: map[string][]domain.HistoryRecord{
		domain.HistoryPath("telegram:7"): {
			{ImageURL: "http://img/1.webp", Prompt: "first", Model: domain.FluxPro, CreatedAt: 1000},
			{ImageURL: "http://img/2.webp", Prompt: "second", Model: domain.Ideogram, CreatedAt: 2000},
			{ImageURL: "http://img/3.webp", Prompt: "third", Model: domain.FluxSchnell, CreatedAt: 3000},
		},
	}}

	tests := []struct {
		name        string
		message     *domain.Message
		auth        MockAuthorizer
		storeErr    error
		wantErr     bool
		wantContain []string
		wantMissing []string
	}{
		{
			name:        "lists newest first up to the limit",
			message:     &domain.Message{ChatID: 1, ID: 1, UserID: 7, Text: "/history"},
			wantContain: []string{"third", "second", "http://img/3.webp"},
			wantMissing: []string{"first"},
		},
		{
			name:        "no records",
			message:     &domain.Message{ChatID: 1, ID: 1, UserID: 8, Text: "/history"},
			wantContain: []string{"not generated any images"},
		},
		{
			name:        "anonymous sender",
			message:     &domain.Message{ChatID: 1, ID: 1, Text: "/history"},
			wantErr:     true,
			wantContain: []string{"identified users"},
		},
		{
			name:        "store error",
			message:     &domain.Message{ChatID: 1, ID: 1, UserID: 7, Text: "/history"},
			storeErr:    errors.New("down"),
			wantErr:     true,
			wantContain: []string{"failed to fetch history"},
		},
		{
			name:    "not authorized",
			message: &domain.Message{ChatID: 1, ID: 1, UserID: 7, Text: "/history"},
			auth:    MockAuthorizer{deny: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store.err = tc.storeErr
			mt := &MockTextSender{}
			h := NewHistory(service.NewHistoryService(store), mt, tc.auth, 2, "/history")

			err := h.Respond(context.Background(), time.Minute, tc.message)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			for _, s := range tc.wantContain {
				assert.Contains(t, mt.Message, s)
			}
			for _, s := range tc.wantMissing {
				assert.NotContains(t, mt.Message, s)
			}
			if tc.auth.deny {
				assert.Empty(t, mt.Message)
			}
		})
	}
}

func TestNewHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(nil, &MockTextSender{}, MockAuthorizer{}, 0, "/history")
	assert.Equal(t, DefaultHistoryLimit, h.limit)
	assert.Equal(t, "/history", h.GetCommand())
}
