package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ayusman/natyam/internal/app"
	"github.com/ayusman/natyam/internal/movement"
	"github.com/ayusman/natyam/internal/replay"
	"github.com/ayusman/natyam/internal/store"
	"github.com/ayusman/natyam/internal/trajectory"
)

func main() {
	fmt.Println("Natyam - Pose Movement Analysis")

	var (
		recordingPath = flag.String("recording", "", "path to a recorded frame sequence (JSON)")
		synth         = flag.String("synth", "", "generate a synthetic sequence instead: squats or jacks")
		reps          = flag.Int("reps", 3, "repetitions for a synthetic sequence")
		sessionName   = flag.String("name", "", "session name; when set, results are saved to the database")
		dbPath        = flag.String("db", "", "database path (default ~/.natyam/natyam.db)")
	)
	flag.Parse()

	rec, err := loadRecording(*recordingPath, *synth, *reps)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	fmt.Printf("Replaying %q: %d frames over %.1fs\n",
		rec.Name, len(rec.Frames), float64(rec.DurationMs())/1000)

	pipeline := app.New(app.DefaultConfig())

	var lastMove movement.Type
	qualities := make(map[movement.Type]*movement.Quality)
	for i := range rec.Frames {
		result := pipeline.Ingest(rec.Frames[i])
		if result.Quality != nil {
			qualities[result.Movement] = result.Quality
		}
		if result.Movement != lastMove {
			fmt.Printf("[%6dms] movement: %s\n", rec.Frames[i].TimestampMs, result.Movement)
			lastMove = result.Movement
		}
	}

	report := pipeline.Analyze()
	printReport(pipeline, report)

	if *sessionName != "" {
		if err := saveSession(pipeline, rec, qualities, *sessionName, *dbPath); err != nil {
			log.Fatalf("Failed to save session: %v", err)
		}
	}
}

// loadRecording resolves the frame source: a recording file or a
// synthetic generator.
func loadRecording(path, synth string, reps int) (*replay.Recording, error) {
	if path != "" {
		return replay.Load(path)
	}
	switch synth {
	case "squats":
		return replay.SyntheticRecording("synthetic squats", replay.SquatSequence(reps, 2000, 33)), nil
	case "jacks":
		return replay.SyntheticRecording("synthetic jumping jacks", replay.JumpingJackSequence(reps, 2000, 33)), nil
	case "":
		return nil, fmt.Errorf("either -recording or -synth is required")
	default:
		return nil, fmt.Errorf("unknown synthetic sequence %q", synth)
	}
}

func printReport(pipeline *app.App, report *trajectory.Report) {
	fmt.Println("\nMovement totals:")
	for _, t := range []movement.Type{
		movement.TypeSquat, movement.TypePushup, movement.TypeJumpingJack, movement.TypeBicepCurl,
	} {
		if s := pipeline.Movements().StateOf(t); s != nil && s.Repetitions > 0 {
			fmt.Printf("  %-14s %d reps\n", t, s.Repetitions)
		}
	}

	fmt.Println("\nTrajectory report:")
	joints := make([]string, 0, len(report.Statistics))
	for j := range report.Statistics {
		joints = append(joints, j)
	}
	sort.Strings(joints)
	for _, j := range joints {
		st := report.Statistics[j]
		fmt.Printf("  %-16s %3d pts  %7.1fpx traveled  quality %5.1f (%s)\n",
			j, st.PointCount, st.TotalDistance, st.QualityScore, st.Grade)
	}
	for _, p := range report.Patterns {
		fmt.Printf("  pattern: %-10s score %.2f confidence %.2f\n", p.Pattern, p.Score, p.Confidence)
	}
	for _, a := range report.Anomalies {
		fmt.Printf("  anomaly: %s on %s (%.1f)\n", a.Kind, a.Joint, a.Value)
	}
}

// saveSession persists the run: session row, per-movement summaries,
// and the exported trajectory document.
func saveSession(pipeline *app.App, rec *replay.Recording, qualities map[movement.Type]*movement.Quality, name, dbPath string) error {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir := filepath.Join(homeDir, ".natyam")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "natyam.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	first := rec.Frames[0].TimestampMs
	sess := &store.Session{
		Name:        name,
		Source:      rec.Name,
		StartedAtMs: first,
		EndedAtMs:   first + rec.DurationMs(),
		FrameCount:  pipeline.FrameCount(),
	}
	if err := st.Sessions().Create(sess); err != nil {
		return err
	}

	var summaries []store.MovementSummary
	for _, t := range []movement.Type{
		movement.TypeSquat, movement.TypePushup, movement.TypeJumpingJack, movement.TypeBicepCurl,
	} {
		s := pipeline.Movements().StateOf(t)
		if s == nil || s.Repetitions == 0 {
			continue
		}
		summary := store.MovementSummary{
			Movement:    string(t),
			Repetitions: s.Repetitions,
		}
		if q := qualities[t]; q != nil {
			summary.QualityScore = q.Score
			summary.Issues = strings.Join(q.Issues, "; ")
		}
		summaries = append(summaries, summary)
	}
	if len(summaries) > 0 {
		if err := st.Summaries().Create(sess.ID, summaries); err != nil {
			return err
		}
	}

	doc, err := pipeline.Trajectories().Export(sess.EndedAtMs)
	if err != nil {
		return err
	}
	if _, err := st.Documents().Create(sess.ID, doc); err != nil {
		return err
	}

	fmt.Printf("\nSaved session %s\n", sess.ID)
	return nil
}
