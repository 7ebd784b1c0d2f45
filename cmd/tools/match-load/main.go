// cmd/tools/match-load/main.go
//
// match-load runs the carrier matching engine for one load against the
// configured database and prints the ranked result set as JSON. It bypasses
// the Zeebe worker and the result cache.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"carrier-matching/internal/common/config"
	"carrier-matching/internal/common/database"
	"carrier-matching/internal/common/logger"
	"carrier-matching/internal/freight/queries"
	"carrier-matching/internal/matching"
	mc "carrier-matching/internal/workers/freight/match-carriers"

	"github.com/spf13/cobra"
)

// Matcher is the engine surface the command drives.
type Matcher interface {
	GetMatchesForLoad(ctx context.Context, loadID int64, opts matching.Options) (*matching.MatchResultSet, error)
}

type matcherFactory func(configPath string) (m Matcher, close func(), err error)

type matchFlags struct {
	configPath       string
	maxResults       int
	ventureID        int64
	minOnTime        float64
	maxDistance      float64
	requireEquipment bool
	onlyAuthorized   bool
	noFmcsaHealth    bool
	pretty           bool
}

func main() {
	if err := newRootCommand(connectEngine).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(newMatcher matcherFactory) *cobra.Command {
	f := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "match-load <loadId>",
		Short: "Rank carriers for a load",
		Long: `Rank eligible carriers for a load and print the result set as JSON.

Options left unset fall back to the engine defaults from the config file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || loadID <= 0 {
				return fmt.Errorf("invalid load id %q", args[0])
			}
			if f.maxDistance < 0 {
				return fmt.Errorf("--max-distance must not be negative, got %v", f.maxDistance)
			}

			m, closeFn, err := newMatcher(f.configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			set, err := m.GetMatchesForLoad(cmd.Context(), loadID, buildOptions(cmd, f))
			if err != nil {
				return fmt.Errorf("matching load %d: %w", loadID, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if f.pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(set)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Config file (default: configs/config.yaml under the project root)")
	flags.IntVar(&f.maxResults, "max-results", 0, "Maximum matches to return; negative means unlimited")
	flags.Int64Var(&f.ventureID, "venture-id", 0, "Venture to scope stats and lane history to, overriding the load's")
	flags.Float64Var(&f.minOnTime, "min-on-time", 0, "Drop carriers below this on-time percentage")
	flags.Float64Var(&f.maxDistance, "max-distance", 0, "Drop carriers farther than this many miles from pickup")
	flags.BoolVar(&f.requireEquipment, "require-equipment", false, "Drop carriers without the load's equipment type")
	flags.BoolVar(&f.onlyAuthorized, "only-authorized", false, "Only consider FMCSA authorized carriers")
	flags.BoolVar(&f.noFmcsaHealth, "no-fmcsa-health", false, "Omit the FMCSA health block from results")
	flags.BoolVar(&f.pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

// buildOptions sets only the options whose flags were given, so unset ones
// still resolve to engine defaults.
func buildOptions(cmd *cobra.Command, f *matchFlags) matching.Options {
	flags := cmd.Flags()
	opts := matching.Options{
		OnlyAuthorizedCarriers: f.onlyAuthorized,
		RequireEquipmentMatch:  f.requireEquipment,
	}
	if flags.Changed("max-results") {
		opts.MaxResults = &f.maxResults
	}
	if flags.Changed("venture-id") {
		opts.VentureID = &f.ventureID
	}
	if flags.Changed("min-on-time") {
		opts.MinOnTimePercentage = &f.minOnTime
	}
	if flags.Changed("max-distance") {
		opts.MaxDistance = &f.maxDistance
	}
	if f.noFmcsaHealth {
		include := false
		opts.IncludeFmcsaHealth = &include
	}
	return opts
}

func connectEngine(configPath string) (Matcher, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres, database.SingleRun)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(context.Background()); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")
	engine := matching.NewEngine(mc.FromAppConfig(cfg).Engine, queries.NewStore(pg.DB, log), log)
	return engine, func() { pg.Close() }, nil
}
