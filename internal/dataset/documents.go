// Package dataset loads corpora and ground truth from disk.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/schema/field"
)

// IDField is the document attribute holding the identifier.
const IDField = "id"

// LoadDocuments reads a JSON array of documents from path.
func LoadDocuments(path string, sc schema.Schema) ([]domdoc.Document, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}
	defer func() { _ = f.Close() }()

	docs, err := DecodeDocuments(f, sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// DecodeDocuments decodes a JSON array of flat objects. Attributes outside
// the schema are ignored. Keyword values may be an array of strings or a
// comma-separated string. Numeric ids are rendered in decimal.
func DecodeDocuments(r io.Reader, sc schema.Schema) ([]domdoc.Document, error) {
	var rows []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode documents: %w", domain.ErrConfiguration, err)
	}

	docs := make([]domdoc.Document, 0, len(rows))
	for i, row := range rows {
		doc, err := rowToDocument(row, sc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func rowToDocument(row map[string]any, sc schema.Schema) (domdoc.Document, error) {
	id, err := scalar(row[IDField])
	if err != nil {
		return domdoc.Document{}, domain.Configf("id: %v", err)
	}

	text := make(map[string]string)
	keywords := make(map[string][]string)
	for _, f := range sc.Fields() {
		raw, ok := row[f.Name()]
		if !ok || raw == nil {
			continue
		}
		switch f.FieldType() {
		case field.Text:
			s, err := scalar(raw)
			if err != nil {
				return domdoc.Document{}, domain.Configf("field %q: %v", f.Name(), err)
			}
			text[f.Name()] = s
		case field.Keyword:
			tags, err := tagList(raw)
			if err != nil {
				return domdoc.Document{}, domain.Configf("field %q: %v", f.Name(), err)
			}
			keywords[f.Name()] = tags
		}
	}
	doc, err := domdoc.New(id, text, keywords)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return doc, nil
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", fmt.Errorf("value is missing")
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func tagList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return SplitTags(t), nil
	case []any:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			s, err := scalar(item)
			if err != nil {
				return nil, err
			}
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
		return tags, nil
	default:
		s, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

// SplitTags splits a comma-separated tag string, dropping empty entries.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
