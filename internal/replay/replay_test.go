package replay

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/natyam/internal/movement"
	"github.com/ayusman/natyam/internal/pose"
)

func TestRecording_SaveLoadRoundTrip(t *testing.T) {
	rec := SyntheticRecording("squats", SquatSequence(2, 2000, 33))
	path := filepath.Join(t.TempDir(), "squats.json")

	if err := rec.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "squats" {
		t.Errorf("Name = %q, want squats", loaded.Name)
	}
	if len(loaded.Frames) != len(rec.Frames) {
		t.Fatalf("Frames = %d, want %d", len(loaded.Frames), len(rec.Frames))
	}
	if loaded.Frames[3].TimestampMs != rec.Frames[3].TimestampMs {
		t.Errorf("frame timestamps not preserved")
	}
	if len(loaded.Frames[0].Keypoints) != 17 {
		t.Errorf("keypoints per frame = %d, want 17", len(loaded.Frames[0].Keypoints))
	}
}

func TestParse_RejectsUnknownVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version":9,"name":"x","frames":[{"timestamp_ms":0,"keypoints":[]}]}`))
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestParse_RejectsEmptyRecording(t *testing.T) {
	_, err := Parse([]byte(`{"version":1,"name":"x","frames":[]}`))
	if !errors.Is(err, ErrEmptyRecording) {
		t.Errorf("error = %v, want ErrEmptyRecording", err)
	}
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"version":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestRecording_DurationMs(t *testing.T) {
	rec := &Recording{Frames: []pose.Frame{
		{TimestampMs: 100},
		{TimestampMs: 500},
	}}
	if got := rec.DurationMs(); got != 400 {
		t.Errorf("DurationMs() = %d, want 400", got)
	}
	if got := (&Recording{}).DurationMs(); got != 0 {
		t.Errorf("empty DurationMs() = %d, want 0", got)
	}
}

func TestSquatSequence_DrivesSquatAnalyzer(t *testing.T) {
	const reps = 3
	frames := SquatSequence(reps, 2000, 33)

	e := movement.NewEngine(movement.DefaultConfig(), movement.DefaultAnalyzers()...)
	var last movement.Result
	for i := range frames {
		last = e.Process(&frames[i])
	}

	if e.Active() != movement.TypeSquat {
		t.Fatalf("Active() = %v, want squat", e.Active())
	}
	if last.Repetitions != reps {
		t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
	}
}

func TestJumpingJackSequence_DrivesJackAnalyzer(t *testing.T) {
	const reps = 3
	frames := JumpingJackSequence(reps, 2000, 33)

	e := movement.NewEngine(movement.DefaultConfig(), movement.DefaultAnalyzers()...)
	var last movement.Result
	for i := range frames {
		last = e.Process(&frames[i])
	}

	if e.Active() != movement.TypeJumpingJack {
		t.Fatalf("Active() = %v, want jumping_jack", e.Active())
	}
	if last.Repetitions != reps {
		t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
	}
}

func TestWithJitter_DeterministicPerSeed(t *testing.T) {
	base := SquatSequence(1, 2000, 33)

	a := WithJitter(base, 3, 42)
	b := WithJitter(base, 3, 42)
	c := WithJitter(base, 3, 7)

	if a[5].Keypoints[0].X != b[5].Keypoints[0].X {
		t.Error("same seed should produce identical jitter")
	}
	if a[5].Keypoints[0].X == c[5].Keypoints[0].X {
		t.Error("different seeds should produce different jitter")
	}
	if base[5].Keypoints[0].X == a[5].Keypoints[0].X {
		t.Error("jitter should actually move keypoints")
	}
}

func TestStandingFrame_HasFullSkeleton(t *testing.T) {
	f := StandingFrame(0)
	if len(f.Keypoints) != len(pose.JointNames) {
		t.Fatalf("keypoints = %d, want %d", len(f.Keypoints), len(pose.JointNames))
	}
	for _, name := range pose.JointNames {
		if !f.Has(0.5, name) {
			t.Errorf("missing high-confidence keypoint %q", name)
		}
	}
}
