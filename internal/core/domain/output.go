package domain

import (
	"fmt"
	"strings"
)

const imageURLPrefix = "http"

// ImageURLFromOutput extracts the canonical image URL from an upstream output.
// The output is either a bare string or a sequence whose first element is used.
func ImageURLFromOutput(output any) (string, error) {
	var candidate any

	switch v := output.(type) {
	case []any:
		if len(v) == 0 {
			return "", fmt.Errorf("%w: empty output", ErrInvalidUpstreamResponse)
		}
		candidate = v[0]
	case []string:
		if len(v) == 0 {
			return "", fmt.Errorf("%w: empty output", ErrInvalidUpstreamResponse)
		}
		candidate = v[0]
	default:
		candidate = v
	}

	imageURL, ok := candidate.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected output type %T", ErrInvalidUpstreamResponse, candidate)
	}

	if !strings.HasPrefix(imageURL, imageURLPrefix) {
		return "", ErrInvalidUpstreamResponse
	}

	return imageURL, nil
}
