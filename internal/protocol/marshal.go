package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ClientMessage is the inbound envelope. Action is kept raw so that
// shape problems inside it surface as BAD_ACTION at decision time
// rather than as transport errors.
type ClientMessage struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Action json.RawMessage `json:"action"`
}

// ErrBadShape marks an action payload that is structurally unusable.
var ErrBadShape = errors.New("malformed action")

// Marshal encodes an outbound record for a single text frame.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// ParseClient decodes one inbound frame into the client envelope. A
// frame that is not a JSON object fails here.
func ParseClient(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse client message: %w", err)
	}
	return &msg, nil
}

// DecodeAction interprets the raw action field of an action record.
// The returned amount is nil when absent or null. Missing object, a
// missing type, or a non-integer amount all return ErrBadShape;
// whether the type names a currently legal action is for the caller
// to decide.
func DecodeAction(raw json.RawMessage) (kind string, amount *int, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil, fmt.Errorf("%w: missing action", ErrBadShape)
	}
	var wire struct {
		Type   string       `json:"type"`
		Amount *json.Number `json:"amount"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	if wire.Type == "" {
		return "", nil, fmt.Errorf("%w: missing action type", ErrBadShape)
	}
	if wire.Amount != nil {
		n, err := wire.Amount.Int64()
		if err != nil {
			return "", nil, fmt.Errorf("%w: amount %q is not an integer", ErrBadShape, wire.Amount.String())
		}
		v := int(n)
		amount = &v
	}
	return wire.Type, amount, nil
}
