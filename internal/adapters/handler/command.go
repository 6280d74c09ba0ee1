package handler

import (
	"context"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/domain/command"
	"imagestudio/internal/core/port"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Command struct {
	commandRegistry port.CommandRegistry
	timeout         time.Duration
}

func NewCommand(commandRegistry port.CommandRegistry, timeout time.Duration) *Command {
	return &Command{commandRegistry: commandRegistry, timeout: timeout}
}

// Handle dispatches a Telegram update to the registered command. The command
// runs in its own goroutine so slow generations do not block the update loop.
func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		log.Debug().Msg("update without message")
		return
	}

	msg := update.Message
	log.Debug().Str("message", msg.Text).Msg("received command")

	cmd := command.ParseCommand(msg.Text)
	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Msg("no handler for command")
		return
	}

	message := &domain.Message{
		ID:     msg.ID,
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.From != nil {
		message.UserID = msg.From.ID
		message.Username = getUserNameFromMessage(msg.From)
	}

	go func() {
		err := commandHandler.Respond(context.WithoutCancel(ctx), c.timeout, message)
		if err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

func getUserNameFromMessage(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
