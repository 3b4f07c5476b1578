// Package protocol defines the WebSocket messages streamed by the motion
// preview server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → client messages
	TypeFrame MessageType = "frame" // Evaluated parameter values
	TypeEvent MessageType = "event" // User event fired by a motion
	TypeState MessageType = "state" // Driver state
	TypeError MessageType = "error" // Rejected command

	// Client → server messages
	TypeCommand MessageType = "command" // Play, express or stop

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Command actions.
const (
	ActionPlay       = "play"
	ActionExpression = "expression"
	ActionStop       = "stop"
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// FrameData is the model state after one driver tick.
type FrameData struct {
	Seq         uint64             `json:"seq"`
	Time        float64            `json:"time"` // driver user time, seconds
	Parameters  map[string]float64 `json:"parameters"`
	Parts       map[string]float64 `json:"parts,omitempty"`
	Opacity     float64            `json:"opacity"`
	Motions     int                `json:"motions"`     // active motion entries
	Expressions int                `json:"expressions"` // active expression entries
}

// EventData is a user event fired by a playing motion.
type EventData struct {
	Motion string  `json:"motion"`
	Label  string  `json:"label"`
	Time   float64 `json:"time"`
}

// StateData describes what the driver is doing.
type StateData struct {
	Running    bool    `json:"running"`
	Motion     string  `json:"motion,omitempty"`
	Expression string  `json:"expression,omitempty"`
	Priority   int     `json:"priority"`
	Time       float64 `json:"time"`
	FPS        float64 `json:"fps"`
	Ticks      uint64  `json:"ticks"`
}

// CommandData asks the driver to play a motion, set an expression or stop.
type CommandData struct {
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// ErrorData reports why a command was rejected.
type ErrorData struct {
	Message string `json:"message"`
}

// NewFrameMessage creates a frame message
func NewFrameMessage(f FrameData) (*Message, error) {
	return NewMessage(TypeFrame, f)
}

// NewEventMessage creates an event message
func NewEventMessage(motion, label string, t float64) (*Message, error) {
	return NewMessage(TypeEvent, EventData{Motion: motion, Label: label, Time: t})
}

// NewStateMessage creates a state message
func NewStateMessage(s StateData) (*Message, error) {
	return NewMessage(TypeState, s)
}

// NewCommandMessage creates a command message
func NewCommandMessage(action, name string, priority int) (*Message, error) {
	return NewMessage(TypeCommand, CommandData{Action: action, Name: name, Priority: priority})
}

// NewErrorMessage creates an error message
func NewErrorMessage(err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: err.Error()})
}
