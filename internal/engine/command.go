package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedCommand is returned for commands the engine refuses to act on.
var ErrMalformedCommand = errors.New("malformed command")

// Action names a command sent to the engine or an event emitted by it.
type Action string

const (
	ActionStart  Action = "START"
	ActionPause  Action = "PAUSE"
	ActionResume Action = "RESUME"
	ActionReset  Action = "RESET"
	ActionStop   Action = "STOP"

	ActionTick     Action = "TICK"
	ActionComplete Action = "COMPLETE"
)

// Payload carries the countdown value for START and RESET.
type Payload struct {
	Time int `json:"time"`
}

// Command is a single instruction for the engine.
type Command struct {
	Action  Action   `json:"action"`
	Payload *Payload `json:"payload,omitempty"`
}

func Start(seconds int) Command {
	return Command{Action: ActionStart, Payload: &Payload{Time: seconds}}
}

func Pause() Command  { return Command{Action: ActionPause} }
func Resume() Command { return Command{Action: ActionResume} }

func Reset(seconds int) Command {
	return Command{Action: ActionReset, Payload: &Payload{Time: seconds}}
}

func Stop() Command { return Command{Action: ActionStop} }

// Validate reports whether the engine can act on c.
func (c Command) Validate() error {
	switch c.Action {
	case ActionStart:
		if c.Payload == nil {
			return fmt.Errorf("%w: START without payload", ErrMalformedCommand)
		}
		if c.Payload.Time <= 0 {
			return fmt.Errorf("%w: START with non-positive time %d", ErrMalformedCommand, c.Payload.Time)
		}
	case ActionReset, ActionStop:
		if c.Payload != nil && c.Payload.Time < 0 {
			return fmt.Errorf("%w: %s with negative time %d", ErrMalformedCommand, c.Action, c.Payload.Time)
		}
	case ActionPause, ActionResume:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformedCommand, c.Action)
	}
	return nil
}

// decodeCommand parses the wire form {"action":"START","payload":{"time":1500}}.
func decodeCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

// Event is emitted by the engine: TICK carries the remaining seconds,
// COMPLETE carries nothing.
type Event struct {
	Action Action
	Time   int
}

func (e Event) MarshalJSON() ([]byte, error) {
	if e.Action == ActionTick {
		return json.Marshal(struct {
			Action Action `json:"action"`
			Time   int    `json:"time"`
		}{e.Action, e.Time})
	}
	return json.Marshal(struct {
		Action Action `json:"action"`
	}{e.Action})
}

func (e Event) String() string {
	if e.Action == ActionTick {
		return fmt.Sprintf("%s(%d)", e.Action, e.Time)
	}
	return string(e.Action)
}
