package ai

import "context"

// Completer produces a text completion for a system instruction and a user
// prompt. Completions are untrusted text: callers must validate any structure
// they expect before acting on it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
