package port

import (
	"context"
	"imagestudio/internal/core/domain"
	"time"
)

// Command answers one chat command, e.g. /image.
type Command interface {
	// Respond handles the message, bounding any generation by timeout.
	Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error
	GetCommand() string
}

type CommandRegistry interface {
	Register(handler Command)
	// Get returns the handler for a lowercased command word without its @botname suffix.
	Get(command string) (Command, error)
	ListCommands() []string
}
