package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"SharedBoard/internal/state"
)

// Message types on the wire.
const (
	TypeJoin     = "join"
	TypeInit     = "init"
	TypeAction   = "action"
	TypeUndo     = "undo"
	TypeRedo     = "redo"
	TypePresence = "presence"
	TypeError    = "error"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// Message is one websocket text frame. Only the fields of its Type are set.
type Message struct {
	Type    string         `json:"type"`
	Room    string         `json:"room,omitempty"`
	Client  string         `json:"client,omitempty"`
	Actions []state.Action `json:"actions,omitempty"`
	Action  *state.Action  `json:"action,omitempty"`
	ID      string         `json:"id,omitempty"`
	Members []string       `json:"members,omitempty"`
	Content string         `json:"content,omitempty"`
}

func Join(room, client string) Message {
	return Message{Type: TypeJoin, Room: room, Client: client}
}

// Init carries the room snapshot. An empty room omits the actions field.
func Init(room string, actions []state.Action) Message {
	return Message{Type: TypeInit, Room: room, Actions: actions}
}

func NewAction(a state.Action) Message { return Message{Type: TypeAction, Action: &a} }
func Undo(id string) Message           { return Message{Type: TypeUndo, ID: id} }
func Redo(a state.Action) Message      { return Message{Type: TypeRedo, Action: &a} }

func Presence(room string, members []string) Message {
	return Message{Type: TypePresence, Room: room, Members: members}
}

func Error(content string) Message { return Message{Type: TypeError, Content: content} }

// Check verifies the fields required by the message type.
func (m Message) Check() error {
	switch m.Type {
	case TypeJoin:
		if m.Room == "" || m.Client == "" {
			return fmt.Errorf("%w: join needs room and client", ErrMalformed)
		}
	case TypeInit, TypePresence, TypeError:
	case TypeAction, TypeRedo:
		if m.Action == nil {
			return fmt.Errorf("%w: %s without action", ErrMalformed, m.Type)
		}
	case TypeUndo:
		if m.ID == "" {
			return fmt.Errorf("%w: undo without id", ErrMalformed)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return nil
}

func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses and checks one frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := m.Check(); err != nil {
		return Message{}, err
	}
	return m, nil
}
