package trajectory

import (
	"encoding/json"
	"fmt"
)

// exportVersion identifies the export document layout.
const exportVersion = 1

// JointExport is one joint's trajectory in an export document.
type JointExport struct {
	Points        []Point `json:"points"`
	TotalDistance float64 `json:"total_distance"`
	MaxVelocity   float64 `json:"max_velocity"`
	QualityScore  float64 `json:"quality_score"`
	Grade         Grade   `json:"grade"`
}

// ExportDocument is the JSON interchange format for trajectory state.
// Import of an export reproduces equivalent trajectories and metrics.
type ExportDocument struct {
	Version    int                    `json:"version"`
	ExportedMs int64                  `json:"exported_ms"`
	Joints     map[string]JointExport `json:"joints"`
}

// Export serializes every trajectory with its derived metrics.
func (e *Engine) Export(nowMs int64) ([]byte, error) {
	doc := ExportDocument{
		Version:    exportVersion,
		ExportedMs: nowMs,
		Joints:     make(map[string]JointExport),
	}

	e.mu.Lock()
	for name, t := range e.trajectories {
		points := t.Points()
		q := AssessQuality(points, e.cfg)
		doc.Joints[name] = JointExport{
			Points:        points,
			TotalDistance: t.TotalDistance,
			MaxVelocity:   t.MaxVelocity,
			QualityScore:  q.Score,
			Grade:         q.Grade,
		}
	}
	e.mu.Unlock()

	return json.Marshal(doc)
}

// Import replaces the engine's trajectories with the contents of an
// export document. Running totals are restored from the document rather
// than recomputed, so metrics survive the round trip exactly.
func (e *Engine) Import(data []byte) error {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse export document: %w", err)
	}
	if doc.Version != exportVersion {
		return fmt.Errorf("unsupported export version %d", doc.Version)
	}

	restored := make(map[string]*Trajectory, len(doc.Joints))
	for name, je := range doc.Joints {
		t := newTrajectory(name, e.cfg.MaxPoints)
		for _, p := range je.Points {
			t.append(p)
		}
		// append recomputes totals from the imported window only; the
		// session-cumulative values come from the document.
		t.TotalDistance = je.TotalDistance
		t.MaxVelocity = je.MaxVelocity
		restored[name] = t
	}

	e.mu.Lock()
	e.trajectories = restored
	e.mu.Unlock()
	return nil
}
