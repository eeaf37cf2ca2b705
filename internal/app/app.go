// Package app wires the pose analysis pipeline together: jitter
// filtering, movement classification, and trajectory analysis.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/natyam/internal/filter"
	"github.com/ayusman/natyam/internal/movement"
	"github.com/ayusman/natyam/internal/pose"
	"github.com/ayusman/natyam/internal/store"
	"github.com/ayusman/natyam/internal/trajectory"
)

// Pipeline timing constants.
const (
	// DefaultAnalysisIntervalMs is how often the trajectory report is
	// recomputed while the pipeline runs.
	DefaultAnalysisIntervalMs = 1000
)

// Config holds configuration options for the pipeline.
type Config struct {
	Filter     filter.Config
	Movement   movement.Config
	Trajectory trajectory.Config

	// AnalysisIntervalMs controls the trajectory report cadence.
	// Zero uses DefaultAnalysisIntervalMs.
	AnalysisIntervalMs int64

	// Store is optional; when set, finished sessions can be persisted.
	Store *store.Store
}

// DefaultConfig returns a pipeline configuration with all component
// defaults applied.
func DefaultConfig() Config {
	return Config{
		Filter:             filter.DefaultConfig(),
		Movement:           movement.DefaultConfig(),
		Trajectory:         trajectory.DefaultConfig(),
		AnalysisIntervalMs: DefaultAnalysisIntervalMs,
	}
}

// ResultFunc receives the movement analysis result for each ingested
// frame.
type ResultFunc func(movement.Result)

// ReportFunc receives each periodic trajectory report.
type ReportFunc func(*trajectory.Report)

// App orchestrates the full pose analysis pipeline. Frames flow
// through the jitter filter first, then fan out to the movement engine
// and the trajectory engine.
type App struct {
	config     Config
	frames     *filter.FrameFilter
	movements  *movement.Engine
	trajectory *trajectory.Engine

	onResult ResultFunc
	onReport ReportFunc

	mu         sync.RWMutex
	enabled    bool
	stopCh     chan struct{}
	done       chan struct{}
	lastStamp  int64
	frameCount int64
}

// New creates a pipeline with the given configuration.
func New(config Config) *App {
	if config.AnalysisIntervalMs <= 0 {
		config.AnalysisIntervalMs = DefaultAnalysisIntervalMs
	}
	return &App{
		config:     config,
		frames:     filter.NewFrameFilter(config.Filter),
		movements:  movement.NewEngine(config.Movement, movement.DefaultAnalyzers()...),
		trajectory: trajectory.NewEngine(config.Trajectory),
		enabled:    true,
	}
}

// OnResult registers the per-frame movement result callback. Must be
// called before Start.
func (a *App) OnResult(fn ResultFunc) { a.onResult = fn }

// OnReport registers the periodic trajectory report callback. Must be
// called before Start.
func (a *App) OnReport(fn ReportFunc) { a.onReport = fn }

// SetEnabled enables or disables frame processing. Disabled ingestion
// drops frames without touching any engine state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Ingest runs one raw frame through the pipeline and returns the
// movement analysis for it. The frame is smoothed, fed to the
// trajectory engine, and classified, in that order.
func (a *App) Ingest(frame pose.Frame) movement.Result {
	if !a.IsEnabled() {
		return movement.Result{Movement: movement.TypeIdle, InsufficientData: true}
	}

	smoothed := a.frames.Apply(frame)
	a.trajectory.Ingest(smoothed)
	result := a.movements.Process(&smoothed)

	a.mu.Lock()
	a.lastStamp = smoothed.TimestampMs
	a.frameCount++
	a.mu.Unlock()

	if a.onResult != nil {
		a.onResult(result)
	}
	return result
}

// Analyze produces a trajectory report as of the most recently
// ingested frame.
func (a *App) Analyze() *trajectory.Report {
	a.mu.RLock()
	now := a.lastStamp
	a.mu.RUnlock()
	return a.trajectory.Analyze(now)
}

// FrameCount returns the number of frames processed so far.
func (a *App) FrameCount() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frameCount
}

// Movements returns the movement engine.
func (a *App) Movements() *movement.Engine { return a.movements }

// Trajectories returns the trajectory engine.
func (a *App) Trajectories() *trajectory.Engine { return a.trajectory }

// Start launches the periodic analysis loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runAnalysisLoop(a.stopCh, a.done)

	log.Println("Analysis pipeline started")
	return nil
}

// Stop halts the analysis loop and waits for it to exit.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	log.Println("Analysis pipeline stopped")
}

// Reset clears all pipeline state: filter channels, movement engine,
// and trajectory histories.
func (a *App) Reset() {
	a.frames.Reset()
	a.movements.Reset()
	a.trajectory.Reset()

	a.mu.Lock()
	a.lastStamp = 0
	a.frameCount = 0
	a.mu.Unlock()
}
