package e2e

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/natyam/internal/app"
	"github.com/ayusman/natyam/internal/movement"
	"github.com/ayusman/natyam/internal/pose"
	"github.com/ayusman/natyam/internal/replay"
	"github.com/ayusman/natyam/internal/store"
	"github.com/ayusman/natyam/internal/trajectory"
)

func TestE2E_SquatSessionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	const reps = 3
	rec := replay.SyntheticRecording("e2e squats",
		replay.WithJitter(replay.SquatSequence(reps, 2000, 33), 2, 99))

	recPath := filepath.Join(tmpDir, "squats.json")
	if err := rec.Save(recPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := replay.Load(recPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	pipeline := app.New(app.DefaultConfig())

	t.Run("ReplayCountsReps", func(t *testing.T) {
		var last movement.Result
		for i := range loaded.Frames {
			last = pipeline.Ingest(loaded.Frames[i])
		}
		if pipeline.Movements().Active() != movement.TypeSquat {
			t.Fatalf("Active() = %v, want squat", pipeline.Movements().Active())
		}
		if last.Repetitions != reps {
			t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
		}
	})

	t.Run("TrajectoryReport", func(t *testing.T) {
		report := pipeline.Analyze()
		if len(report.Statistics) != 17 {
			t.Fatalf("report covers %d joints, want 17", len(report.Statistics))
		}
		knee := report.Statistics[pose.LeftKnee]
		if knee.PointCount == 0 {
			t.Fatal("no knee trajectory recorded")
		}
		for _, a := range report.Anomalies {
			if a.Kind == trajectory.AnomalyVelocity || a.Kind == trajectory.AnomalyStale {
				t.Errorf("unexpected anomaly for clean replay: %+v", a)
			}
		}
	})

	t.Run("PersistAndReload", func(t *testing.T) {
		st, err := store.New(filepath.Join(tmpDir, "data.db"))
		if err != nil {
			t.Fatalf("store.New() error = %v", err)
		}
		defer st.Close()

		sess := &store.Session{
			Name:        "e2e run",
			Source:      loaded.Name,
			StartedAtMs: loaded.Frames[0].TimestampMs,
			EndedAtMs:   loaded.Frames[0].TimestampMs + loaded.DurationMs(),
			FrameCount:  pipeline.FrameCount(),
		}
		if err := st.Sessions().Create(sess); err != nil {
			t.Fatalf("Sessions().Create() error = %v", err)
		}

		if err := st.Summaries().Create(sess.ID, []store.MovementSummary{
			{Movement: string(movement.TypeSquat), Repetitions: reps},
		}); err != nil {
			t.Fatalf("Summaries().Create() error = %v", err)
		}

		doc, err := pipeline.Trajectories().Export(sess.EndedAtMs)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if _, err := st.Documents().Create(sess.ID, doc); err != nil {
			t.Fatalf("Documents().Create() error = %v", err)
		}

		// Reload: the stored document restores an equivalent engine.
		stored, err := st.Documents().Latest(sess.ID)
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		restored := trajectory.NewEngine(trajectory.DefaultConfig())
		if err := restored.Import(stored.Data); err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if got, want := len(restored.Joints()), 17; got != want {
			t.Errorf("restored joints = %d, want %d", got, want)
		}
	})
}

// The canonical smoke scenario: a single joint moving linearly for ten
// frames at 30 Hz with full confidence must smooth monotonically along
// the line, produce no anomalies, and predict with the linear model.
func TestE2E_LinearMotionSmoke(t *testing.T) {
	pipeline := app.New(app.DefaultConfig())

	var lastY float64
	for i := 0; i < 10; i++ {
		frame := pose.Frame{
			TimestampMs: int64(i) * 33,
			Keypoints: []pose.Keypoint{
				{Name: pose.Nose, X: 50, Y: 100 + float64(i)*(100.0/9), Confidence: 1.0},
			},
		}
		result := pipeline.Ingest(frame)
		if result.Error != "" {
			t.Fatalf("frame %d: unexpected analyzer error %q", i, result.Error)
		}

		points, _, _, ok := pipeline.Trajectories().Snapshot(pose.Nose)
		if !ok || len(points) == 0 {
			t.Fatalf("frame %d: nose trajectory missing", i)
		}
		y := points[len(points)-1].Position.Y
		if i > 0 && y < lastY {
			t.Errorf("frame %d: smoothed y regressed: %f < %f", i, y, lastY)
		}
		lastY = y
	}

	report := pipeline.Analyze()
	if len(report.Anomalies) != 0 {
		t.Errorf("anomalies = %+v, want none", report.Anomalies)
	}

	pred := report.Predictions[pose.Nose]
	if pred == nil {
		t.Fatal("expected a prediction for the nose")
	}
	if pred.Method != trajectory.MethodLinear {
		t.Errorf("prediction method = %v, want linear for constant velocity", pred.Method)
	}
	if len(pred.Points) == 0 {
		t.Fatal("prediction has no points")
	}
}
