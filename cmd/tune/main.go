// Package main provides CMA-ES tuning of the crystal cooling loop: it
// searches feed temperature, exchange rate and feed mix for a loop that
// holds a target power without damage.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/supermatter/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval            int     `csv:"eval"`
	Fitness         float64 `csv:"fitness"`
	Delaminations   int     `csv:"delaminations"`
	FeedTemperature float64 `csv:"feed_temperature"`
	ExchangeRate    float64 `csv:"exchange_rate"`
	FeedNitrogen    float64 `csv:"feed_nitrogen"`
	FeedCO2         float64 `csv:"feed_co2"`
}

func newEvalRecord(eval int, fitness float64, delams int, clamped []float64) evalRecord {
	return evalRecord{
		Eval:            eval,
		Fitness:         fitness,
		Delaminations:   delams,
		FeedTemperature: clamped[0],
		ExchangeRate:    clamped[1],
		FeedNitrogen:    clamped[2],
		FeedCO2:         clamped[3],
	}
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 1800, "Simulated ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	targetPower := flag.Float64("target-power", 1000, "Crystal power the loop should hold")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fail := func(msg string, err error) {
		logger.Error(msg, "error", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		fail("missing flag", fmt.Errorf("--output is required"))
	}
	if *targetPower <= 0 {
		fail("invalid flag", fmt.Errorf("--target-power must be positive"))
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fail("failed to create output directory", err)
	}

	// Validate the base config once up front
	baseCfg, err := config.Load(*configPath)
	if err != nil {
		fail("failed to load config", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, *configPath, *targetPower)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		fail("failed to create log file", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	headerWritten := false
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness, err := evaluator.Evaluate(raw)
			if err != nil {
				fail("evaluation failed", err)
			}
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			delams := evaluator.LastDelaminations()
			rows := []evalRecord{newEvalRecord(evalCount, fitness, delams, clamped)}
			if !headerWritten {
				err = gocsv.Marshal(rows, logFile)
				headerWritten = true
			} else {
				err = gocsv.MarshalWithoutHeaders(rows, logFile)
			}
			if err != nil {
				logger.Warn("failed to log evaluation", "eval", evalCount, "error", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: fitness=%.4f delams=%d/%d (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, delams, len(evalSeeds), bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, target power: %.0f\n",
		*seeds, *maxTicks, *targetPower)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		logger.Warn("optimization ended", "error", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		fail("no evaluations completed", fmt.Errorf("nothing to save"))
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	params.ApplyToConfig(baseCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(configOutPath); err != nil {
		logger.Error("failed to write best config", "error", err)
		return
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}
