package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ingestOptions struct {
	recreate bool
}

func newIngestCmd(a *app) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the document corpus into the Redis full-text index",
		Long: `Create the Redis FT index for the configured collection and store every
document of evaluation.documents as a hash. Only needed for the redis backend;
the memory and bleve backends index the corpus at startup.

Examples:
  boostlab ingest
  boostlab ingest --recreate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.recreate, "recreate", false, "Drop the index and its documents first")
	return cmd
}

func runIngest(cmd *cobra.Command, a *app, opts ingestOptions) error {
	ctx := cmd.Context()

	docs, err := a.documents()
	if err != nil {
		return err
	}
	repo, err := a.corpusRepo(ctx)
	if err != nil {
		return err
	}

	if opts.recreate {
		err = repo.Recreate(ctx)
	} else {
		err = repo.CreateIndex(ctx)
	}
	if err != nil && !isIndexExists(err) {
		return err
	}

	n, err := repo.Ingest(ctx, docs)
	if err != nil {
		return err
	}
	a.logger.Info("Corpus ingested",
		zap.String("collection", repo.Collection()),
		zap.Int("documents", n),
	)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "ingested %d documents into %s\n", n, repo.Collection())
	return err
}
