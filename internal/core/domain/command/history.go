package command

import (
	"context"
	"errors"
	"fmt"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"imagestudio/internal/core/service"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultHistoryLimit = 5

type History struct {
	history *service.HistoryService
	ts      port.TextSender
	auth    service.Authorizer
	limit   int
	command string
}

func NewHistory(history *service.HistoryService, ts port.TextSender, auth service.Authorizer,
	limit int, command string) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &History{history: history, ts: ts, auth: auth, limit: limit, command: command}
}

func (h *History) GetCommand() string {
	return h.command
}

// Respond lists the sender's most recent generations.
func (h *History) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !h.auth.IsAuthorized(ctx, message) {
		return nil
	}

	if message.UserID == 0 {
		return h.ts.NotifyAndReturnError(ctx, errors.New("history is only available for identified users"), message)
	}

	records, err := h.history.List(ctx, TelegramIdentity(message.UserID))
	if err != nil {
		log.Err(err).Int64("userId", message.UserID).Msg("error fetching history")
		return h.ts.NotifyAndReturnError(ctx, errors.New("failed to fetch history"), message)
	}

	if len(records) == 0 {
		return h.ts.SendMessageReply(ctx, message, "You have not generated any images yet.")
	}

	sb := &strings.Builder{}
	for _, r := range records[:min(h.limit, len(records))] {
		created := time.UnixMilli(r.CreatedAt).UTC().Format(time.DateTime)
		_, _ = fmt.Fprintf(sb, "%s [%s] %s\n%s\n\n", created, r.Model, r.Prompt, r.ImageURL)
	}

	return h.ts.SendMessageReply(ctx, message, strings.TrimSpace(sb.String()))
}
