package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/repository/profile"
	"github.com/kailas-cloud/boostlab/internal/usecase/evaluation"
	"github.com/kailas-cloud/boostlab/internal/usecase/optimizer"
)

type optimizeOptions struct {
	trials      int
	seed        uint64
	saveProfile string
	format      string
}

// optimizeReport is the JSON output of the optimize command.
type optimizeReport struct {
	*optimizer.Study
	BestBoosts map[string]float64 `json:"best_boosts"`
	Test       *evaluation.Result `json:"test,omitempty"`
}

func newOptimizeCmd(a *app) *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Tune field boosts on the validation split",
		Long: `Search the boost ranges from optimizer.ranges with a seeded TPE sampler,
maximizing MRR on the validation split, then score the best boosts on the
test split.

Examples:
  boostlab optimize
  boostlab optimize --trials 100 --seed 7
  boostlab optimize --save-profile bedrock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.trials, "trials", 0, "Number of trials (default from config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Sampler seed (default from config)")
	cmd.Flags().StringVar(&opts.saveProfile, "save-profile", "", "Store the best boosts under this profile name")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runOptimize(cmd *cobra.Command, a *app, opts optimizeOptions) error {
	ctx := cmd.Context()
	oc := a.cfg.Optimizer

	trials := oc.Trials
	if opts.trials > 0 {
		trials = opts.trials
	}
	seed := oc.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}
	if len(oc.Ranges) == 0 {
		return domain.Configf("optimizer.ranges is empty")
	}

	all, err := a.groundTruth()
	if err != nil {
		return err
	}
	validation, test := evaluation.Split(all, a.cfg.Evaluation.ValidationSize)

	svc, _, err := a.searchService(ctx)
	if err != nil {
		return err
	}
	eval := evaluation.New().WithWorkers(a.cfg.Evaluation.Workers)
	factory := func(b boost.Vector) (evaluation.SearchFunc, error) {
		fn, err := svc.Bind(filter.Expression{}, b, a.cfg.Search.Limit)
		if err != nil {
			return nil, err
		}
		return fn, nil
	}

	opt := optimizer.New(eval, factory).
		WithLogger(a.logger.Named("optimizer")).
		WithStartupTrials(oc.StartupTrials).
		WithCandidates(oc.Candidates)

	study, err := opt.Optimize(ctx, validation, oc.Ranges, trials, seed)
	if err != nil {
		if study == nil || study.BestTrial < 0 {
			return err
		}
		a.logger.Warn("Optimization stopped early, reporting partial study", zap.Error(err))
	}
	if study.BestTrial < 0 {
		return fmt.Errorf("all %d trials failed", len(study.Trials))
	}

	report := optimizeReport{Study: study, BestBoosts: study.Best.Map()}
	if len(test) > 0 && ctx.Err() == nil {
		fn, err := factory(study.Best)
		if err != nil {
			return err
		}
		res, err := eval.Evaluate(ctx, test, fn)
		if err != nil {
			return fmt.Errorf("evaluate best boosts on test split: %w", err)
		}
		report.Test = &res
	}

	if opts.saveProfile != "" {
		repo, err := a.profileRepo(ctx)
		if err != nil {
			return err
		}
		p := profile.Profile{
			Name:   opts.saveProfile,
			Boosts: study.Best,
			Score:  study.BestScore,
			RunID:  study.RunID,
			Seed:   study.Seed,
			Trials: len(study.Trials),
		}
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		a.logger.Info("Profile saved", zap.String("profile", opts.saveProfile), zap.String("run_id", study.RunID))
	}

	return printStudy(cmd, opts.format, &report)
}

func printStudy(cmd *cobra.Command, format string, r *optimizeReport) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "text":
		if _, err := fmt.Fprintf(out, "run:        %s (seed %d)\ntrials:     %d (%d complete)\nbest trial: %d\nbest mrr:   %s\nboosts:     %s\n",
			r.RunID, r.Seed, len(r.Trials), r.Completed(), r.BestTrial, formatScore(r.BestScore), r.Best); err != nil {
			return err
		}
		if r.Test != nil {
			_, err := fmt.Fprintf(out, "test:       hit_rate %s, mrr %s (%d records)\n",
				formatScore(r.Test.HitRate), formatScore(r.Test.MRR), r.Test.Records)
			return err
		}
		return nil
	default:
		return domain.Configf("unknown output format %q", format)
	}
}
