package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantAct  string
		wantArgs interface{}
	}{
		{
			name:     "freq",
			input:    `{"action":"freq","args":{"value":2.5}}`,
			wantAct:  ActionFreq,
			wantArgs: FreqArgs{Value: 2.5},
		},
		{
			name:    "pause",
			input:   `{"action":"pause"}`,
			wantAct: ActionPause,
		},
		{
			name:    "resume",
			input:   `{"action":"resume"}`,
			wantAct: ActionResume,
		},
		{
			name:     "fp16 on",
			input:    `{"action":"fp16","args":{"enabled":true}}`,
			wantAct:  ActionHalf,
			wantArgs: HalfArgs{Enabled: true},
		},
		{
			name:     "fp16 off",
			input:    `{"action":"fp16","args":{"enabled":false}}`,
			wantAct:  ActionHalf,
			wantArgs: HalfArgs{Enabled: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctrl Control
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ctrl))
			assert.Equal(t, tt.wantAct, ctrl.Action)
			assert.Equal(t, tt.wantArgs, ctrl.Args)
		})
	}
}

func TestControlUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown action", `{"action":"reboot"}`},
		{"freq without args", `{"action":"freq"}`},
		{"freq with malformed args", `{"action":"freq","args":{"value":"fast"}}`},
		{"not json", `freq=2.5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctrl Control
			assert.Error(t, json.Unmarshal([]byte(tt.input), &ctrl))
		})
	}
}
