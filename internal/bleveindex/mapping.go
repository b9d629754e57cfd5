package bleveindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/schema/field"
)

const (
	analyzerName = "boostlab_terms"

	// exactSuffix names the keyword companion of a text field (filters).
	exactSuffix = "__exact"

	positionField = "boostlab_position"
)

// scoreField is the bleve field a match query targets for f.
func scoreField(f field.Field) string {
	if f.IsKeyword() {
		return domain.TermsField(f.Name())
	}
	return f.Name()
}

// filterField is the bleve field a term filter targets for f.
func filterField(f field.Field) string {
	if f.IsKeyword() {
		return f.Name()
	}
	return f.Name() + exactSuffix
}

// buildMapping indexes every schema field twice: once tokenized with a
// lowercase unicode analyzer for scoring and once verbatim for exact filters.
func buildMapping(sc schema.Schema) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add analyzer: %w", err)
	}

	dm := bleve.NewDocumentStaticMapping()
	for _, f := range sc.Fields() {
		terms := bleve.NewTextFieldMapping()
		terms.Analyzer = analyzerName
		terms.Name = scoreField(f)

		exact := bleve.NewKeywordFieldMapping()
		exact.Name = filterField(f)

		dm.AddFieldMappingsAt(f.Name(), terms, exact)
	}
	dm.AddFieldMappingsAt(positionField, bleve.NewNumericFieldMapping())

	im.DefaultMapping = dm
	im.DefaultAnalyzer = analyzerName
	return im, nil
}

// toBleveDoc flattens a document: text fields as strings, keyword fields as
// string arrays.
func toBleveDoc(text map[string]string, keywords map[string][]string, sc schema.Schema, pos int) map[string]interface{} {
	m := make(map[string]interface{}, len(sc.Fields())+1)
	for _, f := range sc.Fields() {
		if f.IsKeyword() {
			if tags, ok := keywords[f.Name()]; ok {
				m[f.Name()] = tags
			}
			continue
		}
		if v, ok := text[f.Name()]; ok {
			m[f.Name()] = v
		}
	}
	m[positionField] = float64(pos)
	return m
}
