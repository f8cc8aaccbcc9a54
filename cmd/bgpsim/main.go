package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dd0wney/bgpsim/pkg/caida"
	"github.com/dd0wney/bgpsim/pkg/config"
	"github.com/dd0wney/bgpsim/pkg/logging"
	"github.com/dd0wney/bgpsim/pkg/metrics"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/scenario"
	"github.com/dd0wney/bgpsim/pkg/simulation"
)

type reportRow struct {
	Policy          string  `json:"policy"`
	AdoptionPercent float64 `json:"adoption_percent"`
	Outcome         string  `json:"outcome"`
	ASes            int64   `json:"ases"`
	Fraction        float64 `json:"fraction"`
}

type report struct {
	RunID  string      `json:"run_id"`
	Attack string      `json:"attack"`
	Trials int         `json:"trials"`
	Rows   []reportRow `json:"rows"`
}

func main() {
	configPath := flag.String("config", "", "Path to YAML run configuration")
	topology := flag.String("topology", "", "Path to serial-2 AS-relationship file")
	cache := flag.String("cache", "", "Path to the parsed-topology cache")
	trials := flag.Int("trials", 0, "Number of trials per adoption step")
	attack := flag.String("attack", "", "Attack kind (no_attack, prefix_hijack, subprefix_hijack, origin_spoof)")
	defense := flag.String("defense", "", "Defense policy, '+'-joined for composition")
	adoption := flag.String("adoption", "", "Comma-separated adoption percentages")
	seed := flag.Int64("seed", 0, "Base random seed")
	workers := flag.Int("workers", 0, "Worker count (default: CPUs)")
	output := flag.String("output", "", "Result path (default: stdout)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal(logging.NewDefaultLogger(), "loading config", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, *topology, *cache, *trials, *attack, *defense, *adoption, *seed, *workers, *output, *logLevel)

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		fatal(logger, "validating config", err)
	}

	kind, err := scenario.ParseKind(cfg.Attack)
	if err != nil {
		fatal(logger, "parsing attack kind", err)
	}

	logger.Info("loading topology", logging.String("path", cfg.Topology))
	dataset, err := caida.Load(cfg.Topology, cfg.TopologyCache)
	if err != nil {
		fatal(logger, "loading topology", err)
	}
	graph, err := dataset.BuildGraph()
	if err != nil {
		fatal(logger, "building graph", err)
	}
	logger.Info("graph built",
		logging.Count("ases", graph.Len()),
		logging.Count("ranks", len(graph.Ranks())),
		logging.Count("tier1", len(graph.Tier1())))

	reg := metrics.NewRegistry()
	gen := scenario.NewGenerator(graph, kind)
	orch, err := simulation.New(graph, gen,
		policy.NewBGP(),
		simulation.FactoryFromSpec(cfg.Defense),
		simulation.WithWorkers(cfg.Workers),
		simulation.WithSeed(cfg.Seed),
		simulation.WithLogger(logger),
		simulation.WithMetrics(reg))
	if err != nil {
		fatal(logger, "creating orchestrator", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timer := logging.StartTimer(logger, "sweep finished",
		logging.Scenario(cfg.Attack),
		logging.PolicyName(cfg.Defense))
	agg, err := orch.Sweep(ctx, cfg.Trials, cfg.AdoptionPercents)
	if err != nil {
		timer.EndError(err)
		os.Exit(1)
	}
	timer.End()

	if err := writeReport(cfg, agg); err != nil {
		fatal(logger, "writing report", err)
	}
	logger.Info("run finished",
		logging.RunID(agg.RunID),
		logging.Count("trials_completed", int(orch.Completed())))
}

func applyFlags(cfg *config.Config, topology, cache string, trials int, attack, defense, adoption string, seed int64, workers int, output, logLevel string) {
	if topology != "" {
		cfg.Topology = topology
	}
	if cache != "" {
		cfg.TopologyCache = cache
	}
	if trials > 0 {
		cfg.Trials = trials
	}
	if attack != "" {
		cfg.Attack = attack
	}
	if defense != "" {
		cfg.Defense = defense
	}
	if adoption != "" {
		var percents []float64
		for _, tok := range strings.Split(adoption, ",") {
			p, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err == nil {
				percents = append(percents, p)
			}
		}
		if len(percents) > 0 {
			cfg.AdoptionPercents = percents
		}
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if output != "" {
		cfg.Output = output
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func writeReport(cfg *config.Config, agg *simulation.Aggregate) error {
	rep := report{
		RunID:  agg.RunID,
		Attack: cfg.Attack,
		Trials: cfg.Trials,
	}
	for _, k := range agg.Keys() {
		rep.Rows = append(rep.Rows, reportRow{
			Policy:          k.Policy,
			AdoptionPercent: k.AdoptionPercent,
			Outcome:         k.Outcome.String(),
			ASes:            agg.Count(k),
			Fraction:        agg.Fraction(k.Policy, k.AdoptionPercent, k.Outcome),
		})
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if cfg.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(cfg.Output, data, 0o644)
}

func fatal(logger logging.Logger, msg string, err error) {
	logger.Error(msg, logging.Error(err))
	os.Exit(1)
}
