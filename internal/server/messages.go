package server

import (
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/simulation"
)

// Message types sent by the server.
const (
	MessageWelcome  = "welcome"
	MessageSnapshot = "snapshot"
	MessageAck      = "ack"
	MessageError    = "error"
)

// ClientMessage is a control request, e.g. {"type":"tendency","direction":"+z"}.
// The "snapshot" type asks for the current snapshot instead of a command.
type ClientMessage struct {
	Type      string         `json:"type"`
	Direction axis.Direction `json:"direction,omitempty"`
}

type ServerMessage struct {
	Type     string               `json:"type"`
	Session  string               `json:"session,omitempty"`
	Command  string               `json:"command,omitempty"`
	Snapshot *simulation.Snapshot `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

var commandTypes = map[string]simulation.CommandType{
	string(simulation.CommandTendency): simulation.CommandTendency,
	string(simulation.CommandMove):     simulation.CommandMove,
	string(simulation.CommandPause):    simulation.CommandPause,
	string(simulation.CommandResume):   simulation.CommandResume,
	string(simulation.CommandAlign):    simulation.CommandAlign,
	string(simulation.CommandGravity):  simulation.CommandGravity,
}
