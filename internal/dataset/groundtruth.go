package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domeval "github.com/kailas-cloud/boostlab/internal/domain/evaluation"
)

// Ground truth column names. The target column is "id" or "document".
const (
	QuestionColumn = "question"
	idColumn       = "id"
	documentColumn = "document"
)

// LoadGroundTruth reads a ground truth CSV file.
func LoadGroundTruth(path string) ([]domeval.GroundTruth, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := DecodeGroundTruth(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// DecodeGroundTruth reads CSV with a header row. Extra columns are ignored;
// rows with an empty target are rejected.
func DecodeGroundTruth(r io.Reader) ([]domeval.GroundTruth, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.Configf("ground truth is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrConfiguration, err)
	}

	qCol, idCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case QuestionColumn:
			qCol = i
		case idColumn, documentColumn:
			if idCol < 0 {
				idCol = i
			}
		}
	}
	if qCol < 0 || idCol < 0 {
		return nil, domain.Configf("ground truth needs %q and %q (or %q) columns, got %v",
			QuestionColumn, idColumn, documentColumn, header)
	}

	var out []domeval.GroundTruth
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrConfiguration, line, err)
		}
		if max(qCol, idCol) >= len(row) {
			return nil, domain.Configf("line %d: expected at least %d columns, got %d", line, max(qCol, idCol)+1, len(row))
		}
		rec := domeval.GroundTruth{
			Query:      row[qCol],
			DocumentID: strings.TrimSpace(row[idCol]),
		}
		if err := rec.Validate(); err != nil {
			return nil, domain.Configf("line %d: %v", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
