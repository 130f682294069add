package bootstrap

import "context"

// Warmer prepares a component before the bot starts serving updates,
// e.g. the first rate refresh.
type Warmer interface {
	Warm(ctx context.Context) error
}

// WarmerFunc adapts a bare function to the Warmer interface.
type WarmerFunc func(ctx context.Context) error

// Warm executes the underlying function.
func (f WarmerFunc) Warm(ctx context.Context) error {
	return f(ctx)
}

// Warmup names a Warmer for logs.
type Warmup struct {
	Name string
	Warmer
}
