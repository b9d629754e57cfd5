package search

import (
	"context"

	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
)

// Backend is the capability shared by the embedded text index and the
// full-text engine adapters: a ranked search over one corpus.
type Backend interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}
