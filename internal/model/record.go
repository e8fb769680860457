package model

import "time"

// Record is an event log entry. The trust score and compliance flag are
// audit annotations attached to the record, not to the event itself.
//
// ConsumedBy is empty for the record written at publish time; consumer
// loops write an additional record per system carrying that system's name.
type Record struct {
	Event      *Event    `json:"event"`
	TrustScore float64   `json:"trust_score"`
	Compliant  bool      `json:"compliance_flag"`
	ConsumedBy string    `json:"consumed_by,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
