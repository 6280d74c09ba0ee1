package domain

import "errors"

var (
	ErrInvalidRequest          = errors.New("prompt is required")
	ErrInvalidModel            = errors.New("invalid model selected")
	ErrUpstreamFailure         = errors.New("failed to generate image")
	ErrInvalidUpstreamResponse = errors.New("invalid response from upstream provider")
	ErrPersistenceFailure      = errors.New("failed to save image to history")

	ErrSendingReplyFailed = errors.New("failed to send reply")
)

const historyPathTemplate = "users/%s/images"
