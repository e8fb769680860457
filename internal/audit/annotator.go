// Package audit computes per-event trust and compliance annotations for the
// event log. The annotations are heuristic metadata for audit records, not a
// substitute for a real compliance decision.
package audit

import (
	"github.com/groblegark/relay/internal/model"
)

// Annotation is the audit metadata attached to an event log record.
type Annotation struct {
	TrustScore float64
	Compliant  bool
}

// Annotator scores events deterministically. It never fails and has no
// external dependency.
type Annotator struct {
	// complianceDefault is the static value reported as the compliance
	// flag on every record. It is a placeholder for a real compliance
	// decision and is not computed from event content.
	complianceDefault bool
}

// New returns an Annotator whose compliance flag is the given static value.
func New(complianceDefault bool) *Annotator {
	return &Annotator{complianceDefault: complianceDefault}
}

// Annotate computes the trust score and compliance flag for an event.
//
// The score starts at 0.5, gains 0.3 for high priority, loses 0.1 for low
// priority, gains 0.2 when the payload carries more than five keys, and is
// clamped to [0, 1]. Any priority other than "high" or "low" contributes
// nothing, same as "normal".
func (a *Annotator) Annotate(e *model.Event) Annotation {
	score := 0.5
	switch e.Priority {
	case model.PriorityHigh:
		score += 0.3
	case model.PriorityLow:
		score -= 0.1
	}
	if len(e.Payload) > 5 {
		score += 0.2
	}
	return Annotation{
		TrustScore: clamp(score, 0, 1),
		Compliant:  a.complianceDefault,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
