package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the search index is ready to serve queries.
type IndexChecker interface {
	Ready(ctx context.Context) error
}

// IndexCheckFunc adapts a function to IndexChecker.
type IndexCheckFunc func(ctx context.Context) error

// Ready calls f(ctx).
func (f IndexCheckFunc) Ready(ctx context.Context) error { return f(ctx) }
