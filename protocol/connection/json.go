package connection

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const serializationVersion = "1.0"

// connectionJSON is the saved connection. The state is an object keyed by
// the actor and then by the state name:
//
//	{"Inviter": {"Completed": {...}}}
type connectionJSON struct {
	Version   string                                `json:"version"`
	SourceID  string                                `json:"source_id"`
	AgentInfo pairwise.AgentInfo                    `json:"agent_info"`
	State     map[string]map[string]json.RawMessage `json:"state"`
	Options   *Options                              `json:"options,omitempty"`
}

func (c *Connection) MarshalJSON() (data []byte, err error) {
	defer err2.Handle(&err, "marshal connection")

	st := try.To1(json.Marshal(c.sm.State))
	return json.Marshal(connectionJSON{
		Version:   serializationVersion,
		SourceID:  c.sm.SourceID,
		AgentInfo: c.sm.AgentInfo,
		State: map[string]map[string]json.RawMessage{
			c.sm.Actor.String(): {c.sm.State.Name(): st},
		},
		Options: c.sm.Options,
	})
}

// UnmarshalJSON restores the state machine. The env isn't part of the data,
// use Load to get a usable connection.
func (c *Connection) UnmarshalJSON(data []byte) (err error) {
	defer err2.Handle(&err, func(err error) error {
		return core.Wrap(core.KindInvalidJSON, err, "unmarshal connection")
	})

	var cj connectionJSON
	try.To(json.Unmarshal(data, &cj))
	if cj.Version != serializationVersion {
		return core.Errorf(core.KindInvalidJSON, "version %q isn't supported", cj.Version)
	}
	if len(cj.State) != 1 {
		return core.Errorf(core.KindInvalidJSON, "state must have one actor")
	}
	sm := SM{SourceID: cj.SourceID, AgentInfo: cj.AgentInfo, Options: cj.Options}
	for actor, states := range cj.State {
		sm.Actor = try.To1(parseActor(actor))
		if len(states) != 1 {
			return core.Errorf(core.KindInvalidJSON, "actor must have one state")
		}
		for name, body := range states {
			st := try.To1(newState(name))
			try.To(json.Unmarshal(body, st))
			sm.State = st
		}
	}
	c.sm = sm
	return nil
}

// Load restores the saved connection to use the env.
func Load(data []byte, env *pairwise.Env) (c *Connection, err error) {
	c = &Connection{env: env}
	if err = json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
