package command

import (
	"context"
	"fmt"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"strings"
	"time"
)

type Models struct {
	ts      port.TextSender
	command string
}

func NewModels(ts port.TextSender, command string) *Models {
	return &Models{
		ts:      ts,
		command: command,
	}
}

func (m *Models) GetCommand() string {
	return m.command
}

func (m *Models) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	sb := &strings.Builder{}

	_, err := sb.WriteString("You can pick the model by putting its ID right after /image, " +
		"e.g. \"/image ideogram a red fox\". Available models:\n\n")
	if err != nil {
		return fmt.Errorf("failed to construct response: %w", err)
	}

	for _, model := range domain.Models() {
		suffix := ""
		if model.ID == domain.DefaultModel {
			suffix = " (default)"
		}

		_, err = fmt.Fprintf(sb, " - %s%s: %s. %s\n", model.ID, suffix, model.Name, model.ShortDescription)
		if err != nil {
			return fmt.Errorf("failed to construct response: %w", err)
		}
	}

	err = m.ts.SendMessageReply(ctx, message, sb.String())
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
