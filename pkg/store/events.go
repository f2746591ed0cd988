package store

import "time"

// StreamID is the single process-wide event stream.
const StreamID = "harold.events"

// Event type tags.
const (
	TypeTurnCompleted    = "TurnCompleted"
	TypeReplyReceived    = "ReplyReceived"
	TypeNotificationSent = "NotificationSent"
	TypeReplyRouted      = "ReplyRouted"
)

// Reply directions.
const (
	DirectionInbound = "inbound"
	DirectionSelf    = "self"
)

// Routing outcomes recorded on ReplyRouted events.
const (
	OutcomeDelivered = "delivered"
	OutcomeNoRoute   = "no-route"
	OutcomeDeadPane  = "dead-pane"
)

// Event is one immutable record read back from a stream.
type Event struct {
	Stream  string
	Seq     int64
	Type    string
	TS      time.Time
	TraceID string
	Payload []byte
}

// TurnCompleted is appended by the gRPC ingress when an agent turn finishes.
type TurnCompleted struct {
	PaneID           string `json:"pane_id"`
	PaneLabel        string `json:"pane_label"`
	LastUserPrompt   string `json:"last_user_prompt"`
	AssistantMessage string `json:"assistant_message"`
	MainContext      string `json:"main_context"`
}

// ReplyReceived is appended by the listener for each new chat.db row.
type ReplyReceived struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
}

// NotificationSent records a delivered notification for observability.
type NotificationSent struct {
	Kind        string `json:"kind"`
	TargetAgent string `json:"target_agent"`
	Body        string `json:"body"`
	FollowUp    string `json:"follow_up,omitempty"`
}

// ReplyRouted records the terminal outcome of routing one reply.
type ReplyRouted struct {
	SourceText    string `json:"source_text"`
	ResolvedAgent string `json:"resolved_agent,omitempty"`
	Outcome       string `json:"outcome"`
}
