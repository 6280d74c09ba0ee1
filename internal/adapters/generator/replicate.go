package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultReplicateURL  = "https://api.replicate.com"
	DefaultPollInterval  = time.Second
	statusSucceeded      = "succeeded"
	statusFailed         = "failed"
	statusCanceled       = "canceled"
	replicateErrorPrefix = "replicate"
)

// Replicate runs models on the Replicate predictions API. It is created once
// and is safe for concurrent use.
type Replicate struct {
	apiToken     string
	baseURL      string
	pollInterval time.Duration
	client       *http.Client
}

func NewReplicate(baseURL, apiToken string, pollInterval time.Duration) (*Replicate, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, errors.New("missing replicate API token")
	}

	if baseURL == "" {
		baseURL = DefaultReplicateURL
	}

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Replicate{
		apiToken:     apiToken,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		pollInterval: pollInterval,
		client:       &http.Client{},
	}, nil
}

type predictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Run creates a prediction for model and waits until it reaches a terminal state.
// model is either "owner/name" or "owner/name:version".
func (r *Replicate) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	endpoint, body := r.predictionEndpoint(model, input)

	payloadBuf := new(bytes.Buffer)
	err := json.NewEncoder(payloadBuf).Encode(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding replicate request: %w", err)
	}

	p, err := r.do(ctx, http.MethodPost, endpoint, payloadBuf)
	if err != nil {
		return nil, err
	}

	l := log.With().Str("predictionId", p.ID).Str("model", model).Logger()
	l.Debug().Str("status", p.Status).Msg("prediction created")

	for !isTerminal(p.Status) {
		if p.URLs.Get == "" {
			return nil, fmt.Errorf("prediction %s has no polling URL", p.ID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.pollInterval):
		}

		p, err = r.do(ctx, http.MethodGet, p.URLs.Get, nil)
		if err != nil {
			return nil, err
		}

		l.Debug().Str("status", p.Status).Msg("polled prediction")
	}

	switch p.Status {
	case statusSucceeded:
		return decodeOutput(p.Output)
	case statusCanceled:
		return nil, errors.New("prediction was canceled")
	default:
		return nil, predictionError(p.Error)
	}
}

func (r *Replicate) predictionEndpoint(model string, input map[string]any) (string, predictionRequest) {
	if name, version, ok := strings.Cut(model, ":"); ok && name != "" {
		return r.baseURL + "/v1/predictions", predictionRequest{Version: version, Input: input}
	}

	return r.baseURL + "/v1/models/" + model + "/predictions", predictionRequest{Input: input}
}

func (r *Replicate) do(ctx context.Context, method, url string, body io.Reader) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		log.Error().Err(err).Msg("error creating request for replicate")
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+r.apiToken)
	req.Header.Add("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Add("Prefer", "wait")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing replicate request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading replicate response: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(res.StatusCode, data)
	}

	var p prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error unmarshalling replicate response: %w", err)
	}

	return &p, nil
}

func isTerminal(status string) bool {
	return status == statusSucceeded || status == statusFailed || status == statusCanceled
}

func decodeOutput(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("error unmarshalling prediction output: %w", err)
	}

	return out, nil
}

func predictionError(v any) error {
	switch e := v.(type) {
	case nil:
		return errors.New("prediction failed")
	case string:
		if e == "" {
			return errors.New("prediction failed")
		}
		return errors.New(e)
	default:
		return fmt.Errorf("prediction failed: %v", e)
	}
}

func statusError(status int, body []byte) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return fmt.Errorf("%s: %s (status %d)", replicateErrorPrefix, e.Detail, status)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}

	return fmt.Errorf("%s: %s (status %d)", replicateErrorPrefix, text, status)
}
