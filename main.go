package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"powersim/adapters/api"
	"powersim/adapters/excel"
	"powersim/adapters/postgres"
	"powersim/adapters/rng"
	"powersim/adapters/simdata"
	"powersim/adapters/stats/sigtest"
	"powersim/app"
	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/domain/power"
	"powersim/internal"
	"powersim/internal/config"
	"powersim/internal/estimate"
	"powersim/internal/report"
	"powersim/ports"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot sweep")
	pilot := flag.String("pilot", "", "pilot data file (.xlsx or .csv) to estimate a within-subject design from")
	mean := flag.Float64("mean", 0.5, "true mean shift for the one-sample sweep")
	sd := flag.Float64("sd", 1.0, "population SD for the one-sample sweep")
	gridSpec := flag.String("grid", "5:100:5", "subject grid as start:stop:step")
	trials := flag.Int("trials", 0, "trials per subject per condition (0: use pilot estimates)")
	target := flag.Float64("target", app.DefaultTargetPower, "target power for the minimum-size scan")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := internal.NewDefaultLogger()

	var repo ports.CurveRepository
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("database: %v", err)
		}
		repo = postgres.NewCurveRepository(db)
	}

	if *serve {
		server := api.NewServer(repo, cfg.Simulation, logger)
		addr := ":" + cfg.Server.Port
		logger.Info("listening on %s", addr)
		if err := http.ListenAndServe(addr, server.Handler()); err != nil {
			log.Fatalf("server: %v", err)
		}
		return
	}

	grid, err := parseGrid(*gridSpec, *trials)
	if err != nil {
		log.Fatalf("grid: %v", err)
	}

	gen, test, designName, err := buildSweep(*pilot, *mean, *sd)
	if err != nil {
		log.Fatalf("sweep setup: %v", err)
	}

	est := app.NewEstimator(rng.NewDerivedStreams(cfg.Simulation.Seed), logger)
	est.Replications = cfg.Simulation.Replications
	est.Alpha = cfg.Simulation.Alpha
	if cfg.Simulation.Workers > 0 {
		est.Workers = cfg.Simulation.Workers
	}

	sizing := app.NewSizingService(est)
	sizing.Target = *target

	ctx := context.Background()
	size, curve, err := sizing.RequiredSize(ctx, gen, test, grid)
	run := power.Run{
		ID:           core.NewRunID(),
		Name:         fmt.Sprintf("%s sweep", designName),
		Design:       gen.Name(),
		Test:         test.Name(),
		Seed:         cfg.Simulation.Seed,
		Replications: est.Replications,
		Curve:        curve,
		CreatedAt:    time.Now().UTC(),
	}
	switch {
	case err == nil:
		logger.Info("smallest size reaching %.0f%% power: %s", *target*100, size.Key())
	case core.IsThresholdNotReached(err):
		logger.Warn("no swept size reaches %.0f%% power", *target*100)
	default:
		log.Fatalf("sweep: %v", err)
	}

	fmt.Println(report.Markdown(run))

	if repo != nil {
		if err := repo.Save(ctx, run); err != nil {
			log.Fatalf("saving run: %v", err)
		}
		logger.Info("saved run %s", run.ID)
	}
}

// buildSweep selects the design and test: a pilot file drives a hierarchical
// paired-test sweep; otherwise a simple one-sample sweep with the given
// effect parameters.
func buildSweep(pilotPath string, mean, sd float64) (ports.DatasetGenerator, ports.SignificanceTest, string, error) {
	if pilotPath == "" {
		spec := design.IndependentGroupsSpec{
			Groups: []design.GroupSpec{{Label: "treatment", Mean: mean, SD: sd}},
		}
		return simdata.NewIndependentGroups(spec), sigtest.OneSampleT{Condition: "treatment"}, "one-sample", nil
	}

	obs, err := excel.NewPilotReader(pilotPath).Read()
	if err != nil {
		return nil, nil, "", err
	}
	params, err := estimate.FromPilot(obs)
	if err != nil {
		return nil, nil, "", err
	}
	if len(params.Conditions) != 2 {
		return nil, nil, "", fmt.Errorf("paired sweep needs exactly 2 pilot conditions, got %d", len(params.Conditions))
	}
	gen := simdata.NewWithinSubject(params.WithinSubjectSpec())
	test := sigtest.PairedT{A: params.Conditions[0], B: params.Conditions[1]}
	name := fmt.Sprintf("paired %s from %s", strings.Join(conditionStrings(params.Conditions), " vs "), pilotPath)
	return gen, test, name, nil
}

func conditionStrings(conds []design.Condition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = string(c)
	}
	return out
}

// parseGrid expands start:stop:step into an ordered size grid
func parseGrid(spec string, trials int) ([]design.Size, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("grid must be start:stop:step, got %q", spec)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("grid component %q: %w", p, err)
		}
		nums[i] = v
	}
	start, stop, step := nums[0], nums[1], nums[2]
	if step < 1 || start < 2 || stop < start {
		return nil, fmt.Errorf("grid %q out of range", spec)
	}

	var grid []design.Size
	for n := start; n <= stop; n += step {
		grid = append(grid, design.Size{Subjects: n, Trials: trials})
	}
	return grid, nil
}
