package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/boostlab/internal/db"
)

// SearchText runs a weighted multi-field query via FT.SEARCH. Each field
// becomes a clause carrying a $weight attribute; clauses are OR-ed and the
// filters are AND-ed in front of them.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	queryStr, err := buildTextQuery(q)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseScoredResult(raw)
}

func buildTextQuery(q *db.TextQuery) (string, error) {
	if q.IndexName == "" {
		return "", fmt.Errorf("index name is required")
	}
	if len(q.Terms) == 0 {
		return "", fmt.Errorf("query terms are required")
	}
	if q.Limit <= 0 {
		return "", fmt.Errorf("limit must be positive")
	}

	clauses := make([]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		if f.Weight <= 0 {
			continue
		}
		clauses = append(clauses, buildWeightedClause(f, q.Terms))
	}
	if len(clauses) == 0 {
		return "", fmt.Errorf("at least one field with positive weight is required")
	}

	parts := make([]string, 0, len(q.Filters)+1)
	for _, f := range q.Filters {
		parts = append(parts, buildFieldFilter(f))
	}
	parts = append(parts, "("+strings.Join(clauses, " | ")+")")

	return strings.Join(parts, " "), nil
}

func buildWeightedClause(f db.WeightedField, terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = escapeQuery(t)
	}
	match := fmt.Sprintf("@%s:(%s)", f.Name, strings.Join(escaped, " | "))
	return fmt.Sprintf("(%s) => { $weight: %s; }", match, strconv.FormatFloat(f.Weight, 'g', -1, 64))
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, min(total, int64(len(raw)/3)))
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

func buildFieldFilter(f db.FieldFilter) string {
	if f.Tag {
		return fmt.Sprintf("@%s:{%s}", f.Field, tagEscaper.Replace(f.Value))
	}
	return fmt.Sprintf(`@%s:"%s"`, f.Field, phraseEscaper.Replace(f.Value))
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var phraseEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
