package command

import (
	"context"
	"fmt"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"imagestudio/internal/core/service"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// IdentityBinder attaches a caller identity to a context.
type IdentityBinder func(ctx context.Context, identity string) context.Context

type Image struct {
	sessions     *service.Sessions
	imageSender  port.ImageSender
	textSender   port.TextSender
	auth         service.Authorizer
	withIdentity IdentityBinder
	command      string
}

func NewImage(sessions *service.Sessions,
	imageSender port.ImageSender,
	textSender port.TextSender,
	auth service.Authorizer,
	withIdentity IdentityBinder,
	command string) *Image {
	return &Image{sessions: sessions,
		imageSender:  imageSender,
		textSender:   textSender,
		auth:         auth,
		withIdentity: withIdentity,
		command:      command}
}

func (i *Image) GetCommand() string {
	return i.command
}

// Respond handles "/image [model] prompt". Each chat is one session: when a
// newer request from the same chat finishes first, the older result is dropped.
func (i *Image) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", i.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !i.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return nil
	}

	actionCtx, stopAction := context.WithCancel(ctx)
	go i.textSender.SendChatAction(actionCtx, message.ChatID, domain.SendingPhoto)

	modelID, prompt := ParseModelAndPrompt(ParseCommandArgs(message.Text))

	submitCtx := ctx
	if message.UserID != 0 && i.withIdentity != nil {
		submitCtx = i.withIdentity(ctx, TelegramIdentity(message.UserID))
	}

	result, applied := i.sessions.Get(message.ChatID).Submit(submitCtx, prompt, modelID)
	stopAction()

	if !applied {
		l.Debug().Msg("superseded by a newer request, dropping result")
		return nil
	}

	if !result.OK() {
		return i.textSender.NotifyAndReturnError(ctx, result.Err, message)
	}

	if result.PersistErr != nil {
		l.Warn().Err(result.PersistErr).Msg("image not saved to history")
	}

	err := i.imageSender.SendImageURLReply(ctx, message, result.ImageURL)
	if err != nil {
		err = fmt.Errorf("error sending image: %w", err)
		return i.textSender.NotifyAndReturnError(ctx, err, message)
	}

	return nil
}

// ParseModelAndPrompt splits an optional leading model ID off the prompt.
// Without a known model ID the default model is used and the text is kept whole.
func ParseModelAndPrompt(args string) (domain.ModelID, string) {
	args = strings.TrimSpace(args)
	first, rest, _ := strings.Cut(args, " ")

	if _, err := domain.Resolve(domain.ModelID(strings.ToLower(first))); err == nil {
		return domain.ModelID(strings.ToLower(first)), strings.TrimSpace(rest)
	}

	return domain.DefaultModel, args
}

// TelegramIdentity is the history identity of a Telegram user.
func TelegramIdentity(userID int64) string {
	return fmt.Sprintf("telegram:%d", userID)
}
