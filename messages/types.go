package messages

import (
	"encoding/json"

	"deadgrid/server/game"
	"deadgrid/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	// client -> server
	MessageTypeStart    MessageType = "start"
	MessageTypeAction   MessageType = "action"
	MessageTypeSnapshot MessageType = "snapshot"

	// server -> client
	MessageTypeStarted     MessageType = "started"
	MessageTypeOutcome     MessageType = "outcome"
	MessageTypeRejected    MessageType = "rejected"
	MessageTypeGameOver    MessageType = "game_over"
	MessageTypeRunFinished MessageType = "run_finished"
	MessageTypeError       MessageType = "error"
)

// Error codes sent in ErrorMessage.
const (
	CodeBadMessage   = "BAD_MESSAGE"
	CodeUnknownType  = "UNKNOWN_MESSAGE_TYPE"
	CodeNoSession    = "NO_SESSION"
	CodeSessionLimit = "SESSION_LIMIT"
	CodeInternal     = "INTERNAL"
)

// BaseMessage is the envelope of every outgoing message
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// IncomingMessage is the envelope of a client message. The payload is
// decoded once the type is known.
type IncomingMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartMessage asks for a new game
type StartMessage struct {
	PlayerName string `json:"player_name"`
	Seed       *int64 `json:"seed,omitempty"`
}

// ActionMessage is one player request
type ActionMessage struct {
	Kind       game.ActionKind     `json:"kind"`
	DX         int                 `json:"dx,omitempty"`
	DY         int                 `json:"dy,omitempty"`
	TargetID   string              `json:"target_id,omitempty"`
	CampAction game.CampActionKind `json:"camp_action,omitempty"`
}

// Action converts the message into a game action
func (m ActionMessage) Action() game.Action {
	return game.Action{
		Kind:       m.Kind,
		DX:         m.DX,
		DY:         m.DY,
		TargetID:   m.TargetID,
		CampAction: m.CampAction,
	}
}

// StartedMessage confirms a new session
type StartedMessage struct {
	SessionID string        `json:"session_id"`
	Seed      int64         `json:"seed"`
	Snapshot  game.Snapshot `json:"snapshot"`
}

// OutcomeMessage carries the events of an applied action and the state after it
type OutcomeMessage struct {
	Events   []game.Event  `json:"events"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// SnapshotMessage answers a snapshot request
type SnapshotMessage struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// RejectedMessage reports an action the game refused
type RejectedMessage struct {
	Reason  game.Reason `json:"reason"`
	Message string      `json:"message"`
}

// GameOverMessage reports the final stats of the sender's game
type GameOverMessage struct {
	Stats game.FinalStats   `json:"stats"`
	Run   *models.RunRecord `json:"run,omitempty"`
}

// RunFinishedMessage tells other clients that someone's run ended
type RunFinishedMessage struct {
	Run models.RunRecord `json:"run"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New wraps a payload in its envelope
func New(t MessageType, payload any) BaseMessage {
	return BaseMessage{Type: t, Payload: payload}
}

// Error builds an error envelope
func Error(code, message string) BaseMessage {
	return New(MessageTypeError, ErrorMessage{Code: code, Message: message})
}
