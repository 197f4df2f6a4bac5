package models

import (
	"encoding/json"
	"time"
)

// HealthReport is the outcome of one GET /health probe.
type HealthReport struct {
	OK        bool            `json:"ok"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	CheckedAt time.Time       `json:"checked_at"`
}
