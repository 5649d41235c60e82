/*
Package psm stores the protocol state machines of the connections. A PSM is
the record of one connection: the latest snapshot of its state machine and
the trail of the states it has gone through. Every saved state change is
appended to the trail, the snapshot is overwritten.

@startuml
title SubState

[*] -> waiting
waiting -> waiting: save
waiting -> ready: completed
waiting -> failure: no problem\nreport
waiting -> ready: problem report
ready --> archived: delete
failure --> archived: delete
archived --> [*]
state ready {
	[*] --> ACK
	[*] --> NACK
}
@enduml
*/
package psm

import (
	"time"

	"github.com/findy-network/findy-common-go/dto"
)

// SubState is the coarse state of the PSM. The connection's own state name
// is kept in State.Name.
type SubState uint

const (
	ACK  SubState = 0x01 << iota // Sub sub state of Ready
	NACK                         // Sub sub state of Ready
	Waiting
	Ready
	Failure
	Archived
)

const (
	ReadyACK  SubState = Ready | ACK
	ReadyNACK SubState = Ready | NACK
)

func (ss SubState) String() string {
	switch ss {
	case ReadyACK:
		return "ReadyACK"
	case ACK:
		return "ACK"
	case ReadyNACK:
		return "ReadyNACK"
	case NACK:
		return "NACK"
	case Ready:
		return "Ready"
	case Waiting:
		return "Waiting"
	case Failure:
		return "Failure"
	case Archived:
		return "Archived"
	case ReadyACK | Archived:
		return "ReadyACKArchived"
	case ReadyNACK | Archived:
		return "ReadyNACKArchived"
	case Failure | Archived:
		return "FailureArchived"
	default:
		return "Unknown State"
	}
}

func (ss SubState) IsReady() bool {
	return ss&Ready != 0
}

func (ss SubState) Pure() SubState {
	return ss &^ (NACK | ACK)
}

// StateKey is the primary key of the PSM: the owner's DID, i.e. the wallet
// of the agent, and the connection's source ID.
type StateKey struct {
	DID   string
	Nonce string
}

func NewStateKey(ownerDID, sourceID string) StateKey {
	return StateKey{DID: ownerDID, Nonce: sourceID}
}

func (key StateKey) Data() []byte {
	return []byte(key.DID + "|" + key.Nonce)
}

func (key StateKey) String() string {
	return key.DID + "|" + key.Nonce
}

// State is one saved state of the connection.
type State struct {
	Timestamp int64
	Name      string
	Sub       SubState
}

// PSM is the Protocol State Machine record. It works in event sourcing
// principle: every state change is appended to States.
type PSM struct {
	Key StateKey

	// StartedByUs is true for the inviter.
	StartedByUs bool

	// ConnDID is our end's pairwise DID when the connection has one.
	ConnDID string

	// Snapshot is the serialized connection of the last state.
	Snapshot []byte

	// States has all of the state history of this PSM in timestamp order
	States []State
}

func NewPSM(d []byte) *PSM {
	p := &PSM{}
	dto.FromGOB(d, p)
	return p
}

func (p *PSM) Data() []byte {
	return dto.ToGOB(p)
}

// Append adds the state to the trail if it differs from the last one. It
// tells if the state was added.
func (p *PSM) Append(name string, sub SubState) bool {
	if last := p.LastState(); last != nil && last.Name == name && last.Sub == sub {
		return false
	}
	p.States = append(p.States, State{
		Timestamp: time.Now().UnixNano(),
		Name:      name,
		Sub:       sub,
	})
	return true
}

func (p *PSM) IsReady() bool {
	if lastState := p.LastState(); lastState != nil {
		return lastState.Sub.IsReady() || lastState.Sub.Pure() == Failure
	}
	return false
}

func (p *PSM) IsArchived() bool {
	if lastState := p.LastState(); lastState != nil {
		return lastState.Sub&Archived != 0
	}
	return false
}

func (p *PSM) Timestamp() int64 {
	if state := p.LastState(); state != nil {
		return state.Timestamp
	}
	return 0
}

func (p *PSM) FirstState() *State {
	if len(p.States) > 0 {
		return &p.States[0]
	}
	return nil
}

func (p *PSM) LastState() *State {
	if sCount := len(p.States); sCount > 0 {
		return &p.States[sCount-1]
	}
	return nil
}
