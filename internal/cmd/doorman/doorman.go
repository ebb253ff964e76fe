/*
Copyright 2026 The doorman Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package doorman implements the doorman subcommands: play runs one
// game against a live server, simulate plays offline games against the
// generator.
package doorman

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"k8s.io/utils/clock"

	"github.com/velvetlabs/doorman/internal/client"
	"github.com/velvetlabs/doorman/internal/config"
	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/internal/logging"
	"github.com/velvetlabs/doorman/internal/monitor"
	"github.com/velvetlabs/doorman/internal/runner"
	"github.com/velvetlabs/doorman/internal/sim"
)

// consoleInterval throttles progress lines on stdout.
const consoleInterval = 2 * time.Second

// Options holds the flag values shared by the subcommands.
type Options struct {
	// ConfigPath is an optional YAML configuration file; defaults plus
	// DOORMAN_* environment variables apply when empty.
	ConfigPath string

	// Policy overrides the configured policy kind when non-empty.
	Policy string

	// Scenario is a scenario YAML for simulate; the built-in scenario is
	// used when empty.
	Scenario string

	// Seed is the base arrival seed for simulate; game i uses Seed+i.
	Seed int64

	// Games is the number of offline games simulate plays.
	Games int
}

// ParseFlags parses args into Options.
func ParseFlags(fs *pflag.FlagSet, args []string) (Options, error) {
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "path to a configuration file")
	fs.StringVar(&opts.Policy, "policy", "", "override the configured policy (greedy|paced|dual|primal)")
	fs.StringVar(&opts.Scenario, "scenario", "", "scenario YAML for simulate (built-in when empty)")
	fs.Int64Var(&opts.Seed, "seed", 1, "base arrival seed for simulate")
	fs.IntVar(&opts.Games, "games", 1, "number of offline games to play")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if opts.Games < 1 {
		return Options{}, fmt.Errorf("games must be >= 1, got %d", opts.Games)
	}
	return opts, nil
}

// load resolves configuration and applies the flag overrides.
func load(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Policy != "" {
		cfg.Policy.Kind = policy.Kind(opts.Policy)
		if err := cfg.Policy.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --policy: %w", err)
		}
	}
	return cfg, nil
}

// Play runs one game against the configured live server.
func Play(ctx context.Context, opts Options, out io.Writer) error {
	cfg, err := load(opts)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Verbosity, cfg.Log.Development)
	if err != nil {
		return err
	}

	strategy, err := policy.New(cfg.Policy)
	if err != nil {
		return err
	}
	source := client.New(client.Config{
		BaseURL:        cfg.Server.BaseURL,
		PlayerID:       cfg.Server.PlayerID,
		Scenario:       cfg.Server.Scenario,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxRetries:     cfg.Server.MaxRetries,
	}, logger.WithName("client"))

	sinks := monitor.Multi{monitor.NewConsole(out, clock.RealClock{}, consoleInterval)}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		sinks = append(sinks, monitor.NewPrometheus(reg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error(err, "metrics listener failed", "addr", cfg.Metrics.ListenAddr)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", cfg.Metrics.ListenAddr)
	}

	outcome, err := runner.New(source, strategy, sinks, logger.WithName("runner")).Run(ctx)
	if err != nil {
		return err
	}
	printOutcome(out, outcome)
	if outcome.Status != runner.StatusCompleted || !outcome.ConstraintsMet {
		return fmt.Errorf("game %s %s: %d admitted, %d rejected", outcome.GameID, outcome.Status, outcome.Admitted, outcome.Rejected)
	}
	return nil
}

// Simulate plays opts.Games offline games and reports the aggregate.
func Simulate(ctx context.Context, opts Options, out io.Writer) error {
	cfg, err := load(opts)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Verbosity, cfg.Log.Development)
	if err != nil {
		return err
	}

	scenario := sim.DefaultScenario()
	if opts.Scenario != "" {
		scenario, err = sim.LoadScenario(opts.Scenario)
		if err != nil {
			return err
		}
	}

	wins, rejectedInWins := 0, 0
	for i := 0; i < opts.Games; i++ {
		// Strategies carry per-game learned state; one instance per game.
		strategy, err := policy.New(cfg.Policy)
		if err != nil {
			return err
		}
		simulator := sim.New(scenario, opts.Seed+int64(i))

		outcome, err := runner.New(simulator, strategy, nil, logger.WithName("runner")).Run(ctx)
		if err != nil {
			return err
		}
		printOutcome(out, outcome)
		if outcome.Status == runner.StatusCompleted && outcome.ConstraintsMet {
			wins++
			rejectedInWins += outcome.Rejected
		}
	}

	fmt.Fprintf(out, "scenario=%s policy=%s games=%d wins=%d", scenario.Name, cfg.Policy.Kind, opts.Games, wins)
	if wins > 0 {
		fmt.Fprintf(out, " avg_rejected_in_wins=%.1f", float64(rejectedInWins)/float64(wins))
	}
	fmt.Fprintln(out)
	return nil
}

func printOutcome(out io.Writer, o *runner.Outcome) {
	fmt.Fprintf(out, "game=%s status=%s admitted=%d rejected=%d constraints_met=%t",
		o.GameID, o.Status, o.Admitted, o.Rejected, o.ConstraintsMet)
	if o.Reason != "" {
		fmt.Fprintf(out, " reason=%q", o.Reason)
	}
	fmt.Fprintln(out)
}
