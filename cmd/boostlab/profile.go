package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/repository/profile"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or remove stored boost profiles",
		Long: `Boost profiles are written by "optimize --save-profile" and read by
"search --profile", "evaluate --profile" and POST /search.

Examples:
  boostlab profile show bedrock
  boostlab profile delete bedrock`,
	}
	cmd.AddCommand(newProfileShowCmd(a))
	cmd.AddCommand(newProfileDeleteCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.profileRepo(cmd.Context())
			if err != nil {
				return err
			}
			p, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProfile(cmd, format, &p)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newProfileDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.profileRepo(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("Profile deleted", zap.String("profile", args[0]))
			return nil
		},
	}
}

func printProfile(cmd *cobra.Command, format string, p *profile.Profile) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Name      string             `json:"name"`
			Boosts    map[string]float64 `json:"boosts"`
			Score     float64            `json:"score"`
			RunID     string             `json:"run_id,omitempty"`
			Seed      uint64             `json:"seed"`
			Trials    int                `json:"trials"`
			CreatedAt time.Time          `json:"created_at"`
		}{p.Name, p.Boosts.Map(), p.Score, p.RunID, p.Seed, p.Trials, p.CreatedAt})
	case "text":
		_, err := fmt.Fprintf(out, "profile: %s\nboosts:  %s\nmrr:     %s\nrun:     %s (seed %d, %d trials)\ncreated: %s\n",
			p.Name, p.Boosts, formatScore(p.Score), p.RunID, p.Seed, p.Trials, p.CreatedAt.Format(time.RFC3339))
		return err
	default:
		return domain.Configf("unknown output format %q", format)
	}
}
