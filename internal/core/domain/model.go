package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Message struct {
	ID       int
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

type Action string

const (
	Typing       Action = "typing"
	SendingPhoto Action = "sending_photo"
)

// HistoryRecord is a persisted successful generation.
type HistoryRecord struct {
	ID        string  `json:"id,omitempty"`
	ImageURL  string  `json:"imageUrl"`
	Prompt    string  `json:"prompt"`
	Model     ModelID `json:"model"`
	CreatedAt int64   `json:"createdAt"`
}

// HistoryPath is the collection a user's history records are appended to.
func HistoryPath(identity string) string {
	return fmt.Sprintf(historyPathTemplate, identity)
}

// Result is the outcome of a single submission. Err is nil on success.
// PersistErr reports a failed history write and never turns a success into a failure.
type Result struct {
	ImageURL   string
	Err        error
	PersistErr error
}

func Success(imageURL string) Result {
	return Result{ImageURL: imageURL}
}

func Failure(err error) Result {
	return Result{Err: err}
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Message is the text shown to the user on failure.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	if msg := strings.TrimSpace(r.Err.Error()); msg != "" {
		return msg
	}
	return ErrUpstreamFailure.Error()
}

// Kind returns the error kind a failure was classified as, or nil.
func (r Result) Kind() error {
	for _, kind := range []error{ErrInvalidRequest, ErrInvalidModel, ErrInvalidUpstreamResponse, ErrUpstreamFailure} {
		if errors.Is(r.Err, kind) {
			return kind
		}
	}
	return nil
}

type StateKind int

const (
	Idle StateKind = iota
	Submitting
	Succeeded
	Failed
)

func (k StateKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SubmissionState is what a client currently shows: nothing, a spinner, an image or an error.
type SubmissionState struct {
	Kind     StateKind
	ImageURL string
	Message  string
}

// StateFrom maps a finished result onto the state it produces.
func StateFrom(r Result) SubmissionState {
	if r.OK() {
		return SubmissionState{Kind: Succeeded, ImageURL: r.ImageURL}
	}
	return SubmissionState{Kind: Failed, Message: r.Message()}
}
