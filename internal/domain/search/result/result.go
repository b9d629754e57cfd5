package result

import "github.com/kailas-cloud/boostlab/internal/domain/document"

// Result is a single ranked search hit.
type Result struct {
	doc      document.Document
	score    float64
	position int
}

// New creates a search result. position is the document's corpus position
// (embedded index) or its rank in the engine response (remote engines).
func New(doc document.Document, score float64, position int) Result {
	return Result{doc: doc, score: score, position: position}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.doc.ID() }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Document returns the matched document.
func (r *Result) Document() document.Document { return r.doc }

// Position returns the tie-break position.
func (r *Result) Position() int { return r.position }

// Less orders results by score descending, then position ascending.
func Less(a, b *Result) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.position < b.position
}

// IDs returns the identifiers of results in rank order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].ID()
	}
	return ids
}
