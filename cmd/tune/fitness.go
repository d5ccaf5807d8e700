package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/game"
)

// Fitness weights. A delamination outweighs any steady-state error.
const (
	weightPower   = 1.0
	weightDamage  = 4.0
	delamPenalty  = 100.0
	warmupSeconds = 30.0 // power error is ignored while the crystal spins up
	wakeObject    = "tuning shard"
)

// FitnessEvaluator runs headless simulations and scores a cooling loop.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	configPath  string
	targetPower float64

	mu        sync.Mutex
	lastDelam int // delaminated seeds in the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Each run reloads configPath
// so seeds never share mutable config.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, configPath string, targetPower float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		targetPower: targetPower,
	}
}

// LastDelaminations returns how many seeds delaminated in the most recent evaluation.
func (fe *FitnessEvaluator) LastDelaminations() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDelam
}

// runResult holds the results from a single simulation run.
type runResult struct {
	ticks     int32     // ticks simulated before the run ended
	delamTick int32     // 0 = every crystal survived
	power     []float64 // mean crystal power per tick, after warmup
	maxDamage float64   // worst integrity loss as a fraction of full integrity
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) (float64, error) {
	results := make([]*runResult, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	delams := 0
	for i, r := range results {
		if errs[i] != nil {
			return 0, errs[i]
		}
		if r.delamTick > 0 {
			delams++
		}
		total += fe.computeFitness(r)
	}

	fe.mu.Lock()
	fe.lastDelam = delams
	fe.mu.Unlock()

	return total / float64(len(fe.seeds)), nil
}

// runSimulation executes a single headless run with the monument disabled.
// It stops early once any crystal delaminates.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Monument.Enabled = false
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.NewGameWithOptions(game.Options{
		Config:   cfg,
		Headless: true,
		Seed:     seed,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	reactors := g.Reactors()
	for _, e := range reactors {
		if err := g.Consume(e, wakeObject); err != nil {
			return nil, err
		}
	}

	result := &runResult{}
	warmupTicks := int32(warmupSeconds / cfg.Sim.DT)
	for g.Tick() < fe.maxTicks {
		snap, _ := g.Step()
		result.ticks = snap.Tick

		if len(snap.Reactors) < len(reactors) {
			result.delamTick = snap.Tick
			return result, nil
		}

		var power float64
		for _, r := range snap.Reactors {
			power += r.Power
			result.maxDamage = max(result.maxDamage, 1-r.Integrity/100)
		}
		if snap.Tick > warmupTicks && len(snap.Reactors) > 0 {
			result.power = append(result.power, power/float64(len(snap.Reactors)))
		}
	}
	return result, nil
}

// computeFitness scores one run (lower = better). The power term is the
// root mean square relative error against the target; an early delamination
// costs more than a late one.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	fitness := weightDamage * r.maxDamage

	if r.delamTick > 0 {
		survived := float64(r.delamTick) / float64(fe.maxTicks)
		fitness += delamPenalty * (1 - survived)
	}

	if len(r.power) == 0 {
		return fitness + weightPower
	}
	sq := make([]float64, len(r.power))
	for i, p := range r.power {
		rel := (p - fe.targetPower) / fe.targetPower
		sq[i] = rel * rel
	}
	return fitness + weightPower*math.Sqrt(stat.Mean(sq, nil))
}
