package entity

import "time"

// EventType тип события сессии
type EventType string

const (
	EventSerialRecorded    EventType = "serial.recorded"
	EventSessionReconciled EventType = "session.reconciled"
)

// Event событие, которое публикуется наружу
type Event struct {
	Type       EventType             `json:"type"`
	RunID      string                `json:"run_id"`
	At         time.Time             `json:"at"`
	Serial     string                `json:"serial,omitempty"`
	Confidence float64               `json:"confidence,omitempty"`
	Report     *ReconciliationReport `json:"report,omitempty"`
}
