package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	filters map[string]string
	boosts  []string
	profile string
	limit   int
	format  string // "text", "json"
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one query against the configured backend",
		Long: `Run one query against the configured backend and print the ranked documents.

Examples:
  boostlab search "create an agent"
  boostlab search "create an agent" --filter service="Amazon Bedrock" --boost title=2
  boostlab search "bucket policy" --profile bedrock --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringToStringVar(&opts.filters, "filter", nil, "Exact-match filter field=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.boosts, "boost", nil, "Field boost field=weight (repeatable)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Load boosts from a stored profile")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results, at most 500 (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runSearch(cmd *cobra.Command, a *app, query string, opts searchOptions) error {
	ctx := cmd.Context()

	boosts, err := a.resolveBoosts(cmd, opts.profile, opts.boosts)
	if err != nil {
		return err
	}
	filters, err := filter.FromMap(opts.filters)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	limit := opts.limit
	if limit == 0 {
		limit = a.cfg.Search.Limit
	}
	req, err := request.New(query, filters, boosts, limit)
	if err != nil {
		return err
	}

	svc, _, err := a.searchService(ctx)
	if err != nil {
		return err
	}
	results, err := svc.Search(ctx, &req)
	if err != nil {
		return err
	}
	return printResults(cmd, opts.format, results)
}

// resolveBoosts layers config defaults, then a stored profile, then explicit flags.
func (a *app) resolveBoosts(cmd *cobra.Command, profileName string, pairs []string) (boost.Vector, error) {
	base, err := boost.New(a.cfg.Search.Boosts)
	if err != nil {
		return boost.Vector{}, err
	}
	if profileName != "" {
		repo, err := a.profileRepo(cmd.Context())
		if err != nil {
			return boost.Vector{}, err
		}
		base, err = repo.Boosts(cmd.Context(), profileName)
		if isNotFound(err) {
			return boost.Vector{}, fmt.Errorf("profile %q does not exist: %w", profileName, err)
		}
		if err != nil {
			return boost.Vector{}, err
		}
	}
	override, err := parseBoosts(pairs)
	if err != nil {
		return boost.Vector{}, err
	}
	return mergeBoosts(base, override)
}

func printResults(cmd *cobra.Command, format string, results []result.Result) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		type item struct {
			ID       string              `json:"id"`
			Score    float64             `json:"score"`
			Text     map[string]string   `json:"text,omitempty"`
			Keywords map[string][]string `json:"keywords,omitempty"`
		}
		items := make([]item, len(results))
		for i := range results {
			doc := results[i].Document()
			items[i] = item{
				ID:       results[i].ID(),
				Score:    results[i].Score(),
				Text:     doc.TextFields(),
				Keywords: doc.KeywordFields(),
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "text":
		if len(results) == 0 {
			_, err := fmt.Fprintln(out, "No results.")
			return err
		}
		for i := range results {
			if _, err := fmt.Fprintf(out, "%2d. %-24s %s\n", i+1, results[i].ID(), formatScore(results[i].Score())); err != nil {
				return err
			}
		}
		return nil
	default:
		return domain.Configf("unknown output format %q", format)
	}
}
