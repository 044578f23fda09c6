package decorator

import "context"

// P - params
type CmdHandler[P any] interface {
	Handle(ctx context.Context, p P) error
}

// Q - query, R - result
type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// CmdHandlerFunc adapts a plain function to CmdHandler.
type CmdHandlerFunc[P any] func(ctx context.Context, p P) error

func (f CmdHandlerFunc[P]) Handle(ctx context.Context, p P) error {
	return f(ctx, p)
}

// QueryHandlerFunc adapts a plain function to QueryHandler.
type QueryHandlerFunc[Q any, R any] func(ctx context.Context, q Q) (R, error)

func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, q Q) (R, error) {
	return f(ctx, q)
}
