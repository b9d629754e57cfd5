package corpus

import (
	"strings"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
)

// tagSeparator joins keyword tags into one hash value; the FT index splits
// on it.
const tagSeparator = ","

// buildHashFields converts a document into a flat map[string]string for HSET.
// Keyword tags are stored twice: joined by tagSeparator for the TAG field and
// joined by spaces for its TEXT companion. Missing optional fields are left
// out of the hash.
func buildHashFields(doc *domdoc.Document, sc schema.Schema) (map[string]string, error) {
	m := make(map[string]string, len(sc.Fields()))
	for _, f := range sc.Fields() {
		if f.IsKeyword() {
			tags, ok := doc.Keywords(f.Name())
			if !ok {
				continue
			}
			for _, tag := range tags {
				if strings.Contains(tag, tagSeparator) {
					return nil, domain.Configf("document %q: tag %q in %q contains %q",
						doc.ID(), tag, f.Name(), tagSeparator)
				}
			}
			m[f.Name()] = strings.Join(tags, tagSeparator)
			m[domain.TermsField(f.Name())] = strings.Join(tags, " ")
			continue
		}
		if v, ok := doc.Text(f.Name()); ok {
			m[f.Name()] = v
		}
	}
	if len(m) == 0 {
		return nil, domain.Configf("document %q has no indexable fields", doc.ID())
	}
	return m, nil
}
