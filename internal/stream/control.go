package stream

import (
	"encoding/json"
	"fmt"
)

// Control actions accepted from monitor clients.
const (
	// ActionFreq sets the bank's frequency spread.
	ActionFreq = "freq"

	// ActionPause stops the dispatch clock; ActionResume restarts it.
	ActionPause  = "pause"
	ActionResume = "resume"

	// ActionHalf switches the requesting client to binary16 frames.
	ActionHalf = "fp16"
)

type controlPre struct {
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args"`
}

// Control is one command received from a monitor client, decoded from a JSON
// envelope of the form {"action": ..., "args": {...}}.
type Control struct {
	Action string
	Args   interface{}
}

// FreqArgs carries the new frequency spread for ActionFreq.
type FreqArgs struct {
	Value float32 `json:"value"`
}

// HalfArgs toggles binary16 frames for ActionHalf.
type HalfArgs struct {
	Enabled bool `json:"enabled"`
}

func (c *Control) UnmarshalJSON(b []byte) error {
	var pre controlPre
	if err := json.Unmarshal(b, &pre); err != nil {
		return err
	}
	c.Action = pre.Action
	switch pre.Action {
	case ActionFreq:
		var args FreqArgs
		if err := json.Unmarshal(pre.Args, &args); err != nil {
			return err
		}
		c.Args = args
	case ActionPause, ActionResume:
		c.Args = nil
	case ActionHalf:
		var args HalfArgs
		if err := json.Unmarshal(pre.Args, &args); err != nil {
			return err
		}
		c.Args = args
	default:
		return fmt.Errorf("unrecognized control action %q", pre.Action)
	}
	return nil
}
