package models

import "time"

type EventType string

const (
	EventAgentStarted  EventType = "agent_started"
	EventAgentStopped  EventType = "agent_stopped"
	EventTradeExecuted EventType = "trade_executed"
	EventError         EventType = "error"
	EventAlert         EventType = "alert"
	EventPerformance   EventType = "performance"
	// EventAll subscribes to every other type.
	EventAll EventType = "all"
)

// EventTypes lists every concrete event type.
var EventTypes = []EventType{
	EventAgentStarted,
	EventAgentStopped,
	EventTradeExecuted,
	EventError,
	EventAlert,
	EventPerformance,
}

type Event struct {
	Type     EventType `json:"type"`
	Agent    string    `json:"agent"`
	Message  string    `json:"message"`
	Decision *Decision `json:"decision,omitempty"`
	Time     time.Time `json:"time"`
}
