package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/usecase/evaluation"
)

// Ground truth subsets.
const (
	splitAll        = "all"
	splitValidation = "validation"
	splitTest       = "test"
)

type evaluateOptions struct {
	boosts  []string
	profile string
	split   string
	workers int
	format  string
}

func newEvaluateCmd(a *app) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a boost configuration against ground truth",
		Long: `Run every ground truth question through the backend and report hit rate and
mean reciprocal rank.

The first evaluation.validation_size records form the validation split and
the rest the test split.

Examples:
  boostlab evaluate
  boostlab evaluate --boost category=2 --boost tags=1.5 --split test
  boostlab evaluate --profile bedrock --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, a, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.boosts, "boost", nil, "Field boost field=weight (repeatable)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Load boosts from a stored profile")
	cmd.Flags().StringVar(&opts.split, "split", splitAll, "Records to score: all, validation, test")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent queries (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runEvaluate(cmd *cobra.Command, a *app, opts evaluateOptions) error {
	ctx := cmd.Context()

	boosts, err := a.resolveBoosts(cmd, opts.profile, opts.boosts)
	if err != nil {
		return err
	}
	records, err := a.records(opts.split)
	if err != nil {
		return err
	}
	svc, _, err := a.searchService(ctx)
	if err != nil {
		return err
	}
	fn, err := svc.Bind(filter.Expression{}, boosts, a.cfg.Search.Limit)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers == 0 {
		workers = a.cfg.Evaluation.Workers
	}
	res, err := evaluation.New().WithWorkers(workers).Evaluate(ctx, records, fn)
	if err != nil {
		return err
	}
	a.logger.Info("Evaluation finished",
		zap.String("split", opts.split),
		zap.Stringer("boosts", boosts),
		zap.Float64("hit_rate", res.HitRate),
		zap.Float64("mrr", res.MRR),
	)
	return printEvaluation(cmd, opts.format, res)
}

// records loads ground truth and returns the requested split.
func (a *app) records(split string) ([]evaluation.Record, error) {
	all, err := a.groundTruth()
	if err != nil {
		return nil, err
	}
	validation, test := evaluation.Split(all, a.cfg.Evaluation.ValidationSize)
	switch split {
	case splitAll:
		return all, nil
	case splitValidation:
		return validation, nil
	case splitTest:
		if len(test) == 0 {
			return nil, domain.Configf("test split is empty: %d records, validation_size %d",
				len(all), a.cfg.Evaluation.ValidationSize)
		}
		return test, nil
	default:
		return nil, domain.Configf("unknown split %q (want all, validation or test)", split)
	}
}

func printEvaluation(cmd *cobra.Command, format string, res evaluation.Result) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(res)
	case "text":
		_, err := fmt.Fprintf(out, "records:  %d\nhit_rate: %s\nmrr:      %s\n",
			res.Records, formatScore(res.HitRate), formatScore(res.MRR))
		return err
	default:
		return domain.Configf("unknown output format %q", format)
	}
}
