package port

import "context"

type ImageGenerator interface {
	// Run invokes model upstream with input and returns the decoded output, typically a
	// URL string or a list of URL strings.
	Run(ctx context.Context, model string, input map[string]any) (any, error)
}
