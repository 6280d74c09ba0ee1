package port

import (
	"context"
	"imagestudio/internal/core/domain"
)

type TextSender interface {
	// SendMessageReply sends a reply to a specified message with the given text.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) error
	// SendChatAction sends a specified chat action (e.g., typing, sending photo) to indicate activity in a given chat.
	SendChatAction(ctx context.Context, chatID int64, action domain.Action)
	// NotifyAndReturnError sends an error notification based on the provided message context and returns the error.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}

type ImageSender interface {
	// SendImageURLReply sends an image to the chat as a reply using a URL in response to the provided message.
	SendImageURLReply(ctx context.Context, message *domain.Message, url string) error
}
