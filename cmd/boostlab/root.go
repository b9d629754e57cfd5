package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/config"
	logpkg "github.com/kailas-cloud/boostlab/internal/logger"
	"github.com/kailas-cloud/boostlab/internal/metrics"
	"github.com/kailas-cloud/boostlab/internal/version"
)

// globalOptions holds persistent flags.
type globalOptions struct {
	env     string
	backend string
	logLvl  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:   "boostlab",
		Short: "Tune field boosts for lexical retrieval",
		Long: `boostlab indexes a document corpus, scores search configurations against
labeled ground truth (hit rate, MRR) and tunes per-field boost weights with a
seeded TPE optimizer.

Examples:
  boostlab search "how do I create an agent" --filter service="Amazon Bedrock"
  boostlab evaluate --boost title=2 --split test
  boostlab optimize --trials 50 --seed 42 --save-profile bedrock
  boostlab serve --backend bleve`,
		Version:       version.String(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Search backend override: memory, redis, bleve")
	cmd.PersistentFlags().StringVar(&opts.logLvl, "log-level", "", "Log level override: debug, info, warn, error")

	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newEvaluateCmd(a))
	cmd.AddCommand(newOptimizeCmd(a))
	cmd.AddCommand(newIngestCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	cmd.AddCommand(newServeCmd(a))
	return cmd
}

func (a *app) init(opts *globalOptions) error {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return err
	}
	if cfg, err = cfg.WithBackend(opts.backend); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.logLvl != "" {
		level = opts.logLvl
	}
	logger, err := logpkg.NewLogger(opts.env, level)
	if err != nil {
		return err
	}

	sc, err := cfg.BuildSchema()
	if err != nil {
		return err
	}

	metrics.RegisterRetrievalMetrics()

	a.cfg = cfg
	a.env = opts.env
	a.logger = logger
	a.schema = sc
	logger.Debug("Configuration loaded",
		zap.String("env", opts.env),
		zap.String("backend", cfg.Backend.Name),
		zap.Strings("fields", sc.Names()),
	)
	return nil
}
