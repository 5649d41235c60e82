package connection

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/agent/psm"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

func subStateOf(st State) psm.SubState {
	switch st := st.(type) {
	case *Completed:
		return psm.ReadyACK
	case *Failed:
		if st.Problem != nil {
			return psm.ReadyNACK
		}
		return psm.Failure
	}
	return psm.Waiting
}

// Save stores the connection under the owner. The state trail of the record
// grows when the state has changed since the last save. The pairwise is
// saved when the connection is completed with a handshake.
func Save(db *psm.DB, owner string, c *Connection) (err error) {
	defer err2.Handle(&err, "save %s", c.sm.SourceID)

	key := psm.NewStateKey(owner, c.sm.SourceID)
	p, err := db.GetPSM(key)
	switch {
	case psm.IsNotFound(err):
		p = &psm.PSM{Key: key, StartedByUs: c.sm.Actor == Inviter}
	case err != nil:
		return err
	}
	p.ConnDID = c.sm.AgentInfo.PwDID
	p.Snapshot = try.To1(json.Marshal(c))
	p.Append(c.sm.State.Name(), subStateOf(c.sm.State))
	try.To(db.AddPSM(p))

	if st, ok := c.sm.State.(*Completed); ok && st.DIDDoc != nil {
		try.To(db.AddPairwiseRep(pairwiseRep(key, c, st)))
	}
	return nil
}

func pairwiseRep(key psm.StateKey, c *Connection, st *Completed) *psm.PairwiseRep {
	me := psm.DIDRep{
		DID:      c.sm.AgentInfo.PwDID,
		VerKey:   c.sm.AgentInfo.PwVK,
		Endpoint: c.sm.AgentInfo.AgencyEndpoint(c.env),
	}
	theirVK, _ := c.RemoteVK()
	them := psm.DIDRep{DID: st.DIDDoc.ID, VerKey: theirVK, Endpoint: st.DIDDoc.ServiceEndpoint()}
	rep := &psm.PairwiseRep{Name: c.sm.SourceID, Key: key, TheirLabel: st.TheirLabel}
	if c.sm.Actor == Inviter {
		rep.Caller, rep.Callee = me, them
	} else {
		rep.Caller, rep.Callee = them, me
	}
	return rep
}

// Restore loads the owner's saved connection.
func Restore(db *psm.DB, owner, sourceID string, env *pairwise.Env) (c *Connection, err error) {
	defer err2.Handle(&err, "restore %s", sourceID)

	p := try.To1(db.GetPSM(psm.NewStateKey(owner, sourceID)))
	return Load(p.Snapshot, env)
}

// Archive marks the saved connection deleted. The record stays in the
// database with its state trail.
func Archive(db *psm.DB, owner, sourceID string) (err error) {
	defer err2.Handle(&err, "archive %s", sourceID)

	p := try.To1(db.GetPSM(psm.NewStateKey(owner, sourceID)))
	last := p.LastState()
	sub := psm.Waiting
	name := ""
	if last != nil {
		sub, name = last.Sub, last.Name
	}
	p.Append(name, sub|psm.Archived)
	return db.AddPSM(p)
}

// Saved returns the owner's saved connections which aren't archived, oldest
// first.
func Saved(db *psm.DB, owner string) (psms []psm.PSM, err error) {
	defer err2.Handle(&err, "saved connections")

	for _, p := range try.To1(db.AllPSM(owner, nil)) {
		if !p.IsArchived() {
			psms = append(psms, p)
		}
	}
	return psms, nil
}
