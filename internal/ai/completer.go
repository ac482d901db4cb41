package ai

import "context"

// Completer is the narrow seam between the pipeline and a language model
// provider. Implementations return the raw textual response for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
