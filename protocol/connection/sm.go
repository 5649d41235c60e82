package connection

import (
	"fmt"

	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/common"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/didexchange"
	"github.com/findy-network/findy-didexchange/std/didexchange/invitation"
	"github.com/findy-network/findy-didexchange/std/discovery"
	"github.com/findy-network/findy-didexchange/std/outofband"
	"github.com/findy-network/findy-didexchange/std/trustping"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// SM is the connection state machine. It's used as a value: transition
// returns the next SM and leaves the old one as it was.
type SM struct {
	SourceID  string
	AgentInfo pairwise.AgentInfo
	Actor     Actor
	State     State
	Options   *Options
}

type event interface {
	name() string
}

// connectEvent starts our part of the protocol with the pairwise agent.
type connectEvent struct {
	agent pairwise.AgentInfo
	opts  *Options
}

// invitationEvent gives the invitee the inviter's invitation. The agent is
// needed only when the invitation completes the connection without a
// handshake.
type invitationEvent struct {
	inv   Invitations
	agent pairwise.AgentInfo
}

// receivedEvent is a message from the other end. newAgent is the rotated
// pairwise agent the inviter answers a request with.
type receivedEvent struct {
	msg      *aries.Message
	senderVK string
	newAgent pairwise.AgentInfo
}

type pingEvent struct {
	ping *trustping.Ping
}

// sendEvent is a message we send over the completed connection.
type sendEvent struct {
	msg *aries.Message
}

func (connectEvent) name() string    { return "Connect" }
func (invitationEvent) name() string { return "Invitation" }
func (e receivedEvent) name() string { return e.msg.Kind.String() }
func (pingEvent) name() string       { return "SendPing" }
func (sendEvent) name() string       { return "Send" }

// outgoing is a message the transition asks to be sent. A failing best
// effort send doesn't stop the transition.
type outgoing struct {
	msg        *aries.Message
	to         *did.Doc
	from       pairwise.AgentInfo
	bestEffort bool
}

var supported = discovery.NewRegistry(nil)

func newSM(sourceID string, actor Actor, st State) SM {
	return SM{SourceID: sourceID, Actor: actor, State: st}
}

// transition is the whole protocol. It doesn't do I/O: the messages to send
// are returned and the caller sends them before it takes the next SM into
// use. The wallet of the env is used for the signatures.
func (sm SM) transition(ev event, env *pairwise.Env) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err, "%s %s: %s", sm.Actor, sm.State.Name(), ev.name())

	switch st := sm.State.(type) {
	case *Initialized:
		return sm.fromInitialized(st, ev, env)
	case *Invited:
		return sm.fromInvited(st, ev, env)
	case *Requested:
		return sm.fromRequested(st, ev, env)
	case *Responded:
		return sm.fromResponded(st, ev)
	case *Completed:
		return sm.fromCompleted(st, ev)
	case *Failed:
		if _, ok := ev.(receivedEvent); ok {
			return sm, nil, core.Errorf(core.KindInvalidState, "connection failed")
		}
		return sm.rejected(ev)
	}
	return sm, nil, core.Errorf(core.KindInvalidState, "unknown state %T", sm.State)
}

// rejected is what happens to an event which the state has no transition
// for. Received messages are left as they are.
func (sm SM) rejected(ev event) (SM, []outgoing, error) {
	switch ev := ev.(type) {
	case receivedEvent:
		glog.Warningf("%s: %s isn't handled in %s %s",
			sm.SourceID, ev.msg.Kind, sm.Actor, sm.State.Name())
		return sm, nil, nil
	case pingEvent, sendEvent:
		return sm, nil, core.Errorf(core.KindNotReady, "connection isn't completed")
	}
	return sm, nil, core.Errorf(core.KindInvalidState, "not allowed")
}

func (sm SM) fromInitialized(st *Initialized, ev event, env *pairwise.Env) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	next = sm
	switch ev := ev.(type) {
	case connectEvent:
		if sm.Actor != Inviter {
			return sm, nil, core.Errorf(core.KindInvalidState, "invitee needs an invitation")
		}
		publicDID := ""
		if ev.opts.usePublicDID() {
			if env.PublicDID == "" {
				return sm, nil, core.Errorf(core.KindInvalidOption, "no public DID")
			}
			publicDID = env.PublicDID
		}
		next.AgentInfo = ev.agent
		next.Options = ev.opts
		if st.OutOfBand == nil {
			inv := invitation.New()
			inv.Label = sm.SourceID
			inv.RecipientKeys = ev.agent.RecipientKeys()
			inv.RoutingKeys = ev.agent.RoutingKeys(env)
			inv.ServiceEndpoint = ev.agent.AgencyEndpoint(env)
			inv.PublicDID = publicDID
			next.State = &Invited{Invitation: Invitations{Connection: inv}}
			return next, nil, nil
		}
		inv := outOfBandInvitation(sm.SourceID, st.OutOfBand, ev.agent, env)
		inv.PublicDID = publicDID
		if inv.WithoutHandshake() {
			next.State = &Completed{
				Invitation: Invitations{OutOfBand: inv},
				Thread:     &decorator.Thread{PID: inv.ID},
			}
		} else {
			next.State = &Invited{Invitation: Invitations{OutOfBand: inv}}
		}
		return next, nil, nil

	case invitationEvent:
		return sm.invited(ev)
	}
	return sm.rejected(ev)
}

func outOfBandInvitation(label string, p *OutOfBandParams, ai pairwise.AgentInfo, env *pairwise.Env) *outofband.Invitation {
	inv := outofband.NewInvitation(label)
	inv.GoalCode = p.GoalCode
	inv.Goal = p.Goal
	if p.Handshake {
		inv.HandshakeProtocols = []string{pltype.DIDOrgAries + "/" + pltype.SupportedHandshakeProtocol}
	}
	if len(p.RequestAttach) > 0 {
		inv.RequestAttach = []decorator.Attachment{*decorator.NewJSONAttachment("request-0", p.RequestAttach)}
	}
	inv.Services = []outofband.Service{
		outofband.NewInlineService(ai.AgencyEndpoint(env), ai.RecipientKeys(), ai.RoutingKeys(env)),
	}
	return inv
}

// invited stores the invitation to the invitee. An out-of-band invitation
// without handshake completes the connection right away.
func (sm SM) invited(ev invitationEvent) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	if sm.Actor != Invitee {
		return sm, nil, core.Errorf(core.KindInvalidState, "inviter cannot take an invitation")
	}
	next = sm
	oob := ev.inv.OutOfBand
	if oob == nil || !oob.WithoutHandshake() {
		next.State = &Invited{Invitation: ev.inv}
		return next, nil, nil
	}
	if ev.agent.IsZero() {
		return sm, nil, core.Errorf(core.KindInvalidState, "no pairwise agent for the connection")
	}
	doc := try.To1(oob.DIDDoc())
	next.AgentInfo = ev.agent
	next.State = &Completed{
		Invitation: ev.inv,
		DIDDoc:     doc,
		TheirLabel: oob.Label,
		Thread:     &decorator.Thread{PID: oob.ID},
	}
	return next, nil, nil
}

func (sm SM) fromInvited(st *Invited, ev event, env *pairwise.Env) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	next = sm
	switch ev := ev.(type) {
	case connectEvent:
		if sm.Actor != Invitee {
			return sm, nil, core.Errorf(core.KindInvalidState, "already connected")
		}
		theirDoc := try.To1(st.Invitation.DIDDoc())
		ai := ev.agent
		conn := didexchange.NewConnection(ai.PwDID, ai.AgencyEndpoint(env),
			ai.RecipientKeys(), ai.RoutingKeys(env))
		req := didexchange.NewRequest(sm.SourceID, conn)
		req.Thread.PID = st.Invitation.ParentThreadID()

		next.AgentInfo = ai
		next.Options = ev.opts
		next.State = &Requested{Invitation: st.Invitation, Request: req, DIDDoc: theirDoc}
		return next, []outgoing{{msg: try.To1(aries.New(req)), to: theirDoc, from: ai}}, nil

	case invitationEvent:
		return sm.invited(ev)

	case receivedEvent:
		if p, ok := problemOf(ev.msg); ok {
			return sm.failed(st.Invitation, p), nil, nil
		}
		if req, ok := aries.As[didexchange.Request](ev.msg); ok && sm.Actor == Inviter {
			return sm.respond(st, req, ev.newAgent, env)
		}
	}
	return sm.rejected(ev)
}

// respond answers the request. The response carries the DID document of the
// new pairwise agent and it's signed with the invitation's key.
func (sm SM) respond(st *Invited, req *didexchange.Request, newAgent pairwise.AgentInfo, env *pairwise.Env) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	prev := sm.AgentInfo
	thread := &decorator.Thread{ID: req.ThreadID()}
	if req.Thread != nil {
		thread.PID = req.Thread.PID
	}

	if err := validRequest(req); err != nil {
		glog.Warningln(sm.SourceID, "request not accepted:", err)
		problem := didexchange.NewProblemReport(didexchange.RequestProcessingError, err.Error(), thread)
		next = sm.failed(st.Invitation, problem)
		if req.Connection != nil && req.Connection.DIDDoc != nil {
			out = []outgoing{{msg: try.To1(aries.New(problem)), to: req.Connection.DIDDoc,
				from: prev, bestEffort: true}}
		}
		return next, out, nil
	}

	if newAgent.IsZero() {
		newAgent = prev
	}
	theirDoc := req.Connection.DIDDoc
	conn := didexchange.NewConnection(newAgent.PwDID, newAgent.AgencyEndpoint(env),
		newAgent.RecipientKeys(), newAgent.RoutingKeys(env))
	resp := didexchange.NewResponse(conn, thread)
	try.To(resp.Sign(env.Wallet, prev.PwVK))

	next = sm
	next.AgentInfo = newAgent
	next.State = &Responded{
		Invitation:    st.Invitation,
		Request:       req,
		Response:      resp,
		DIDDoc:        theirDoc,
		PrevAgentInfo: prev,
	}
	return next, []outgoing{{msg: try.To1(aries.New(resp)), to: theirDoc, from: prev}}, nil
}

func validRequest(req *didexchange.Request) error {
	if req.Connection == nil || req.Connection.DIDDoc == nil {
		return core.Errorf(core.KindInvalidDIDDoc, "request has no DID document")
	}
	return req.Connection.DIDDoc.Validate()
}

func (sm SM) fromRequested(st *Requested, ev event, env *pairwise.Env) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	rev, ok := ev.(receivedEvent)
	if !ok {
		return sm.rejected(ev)
	}
	if p, ok := problemOf(rev.msg); ok {
		return sm.failed(st.Invitation, p), nil, nil
	}
	resp, ok := aries.As[didexchange.Response](rev.msg)
	if !ok || resp.ThreadID() != st.Request.ThreadID() {
		return sm.rejected(ev)
	}

	// Verify fills the connection of the response, keep the message as is
	verified := *resp
	if err := verified.Verify(env.Wallet, st.Invitation.RecipientKey()); err != nil {
		glog.Warningln(sm.SourceID, "response not accepted:", err)
		problem := didexchange.NewProblemReport(didexchange.ResponseProcessingError,
			err.Error(), &decorator.Thread{ID: st.Request.ThreadID()})
		return sm.failed(st.Invitation, problem), []outgoing{{msg: try.To1(aries.New(problem)),
			to: st.DIDDoc, from: sm.AgentInfo, bestEffort: true}}, nil
	}

	theirDoc := verified.Connection.DIDDoc
	thread := verified.Thread.Clone()
	ack := common.NewAck(thread)

	next = sm
	next.State = &Completed{
		Invitation: st.Invitation,
		DIDDoc:     theirDoc,
		TheirLabel: st.Invitation.Label(),
		Thread:     thread,
	}
	return next, []outgoing{{msg: try.To1(aries.New(ack)), to: theirDoc, from: sm.AgentInfo}}, nil
}

func (sm SM) fromResponded(st *Responded, ev event) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	switch ev := ev.(type) {
	case pingEvent:
		return sm, []outgoing{{msg: try.To1(aries.New(ev.ping)), to: st.DIDDoc, from: sm.AgentInfo}}, nil

	case receivedEvent:
		if p, ok := problemOf(ev.msg); ok {
			return sm.failed(st.Invitation, p), nil, nil
		}
		next = sm
		next.State = &Completed{
			Invitation:    st.Invitation,
			DIDDoc:        st.DIDDoc,
			TheirLabel:    st.Request.Label,
			Thread:        st.Response.Thread.Clone(),
			PrevAgentInfo: st.PrevAgentInfo,
		}
		switch ev.msg.Kind {
		case aries.Ack:
			if ev.msg.ThreadID() != st.Response.ThreadID() {
				return sm.rejected(ev)
			}
			return next, nil, nil
		case aries.Ping:
			ping, _ := aries.As[trustping.Ping](ev.msg)
			return next, pingResponse(ping, st.DIDDoc, sm.AgentInfo), nil
		case aries.PingResponse:
			return next, nil, nil
		}
	}
	return sm.rejected(ev)
}

func (sm SM) fromCompleted(st *Completed, ev event) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	switch ev := ev.(type) {
	case pingEvent:
		return sm.send(st, try.To1(aries.New(ev.ping)))
	case sendEvent:
		return sm.send(st, ev.msg)
	case receivedEvent:
		return sm.handleCompleted(st, ev)
	}
	return sm.rejected(ev)
}

func (sm SM) send(st *Completed, msg *aries.Message) (SM, []outgoing, error) {
	if st.DIDDoc == nil {
		return sm, nil, core.Errorf(core.KindNotReady, "no DID document of the other end")
	}
	return sm, []outgoing{{msg: msg, to: st.DIDDoc, from: sm.AgentInfo}}, nil
}

// handleCompleted answers the protocol messages which are handled on a
// completed connection. A problem report is returned as ProblemError and the
// state stays.
func (sm SM) handleCompleted(st *Completed, ev receivedEvent) (next SM, out []outgoing, err error) {
	defer err2.Handle(&err)

	msg := ev.msg
	if p, ok := problemOf(msg); ok {
		glog.Warningf("%s: problem report on completed connection: %s %s",
			sm.SourceID, p.ProblemCode, p.Explain)
		return sm, nil, &ProblemError{Report: p}
	}
	switch msg.Kind {
	case aries.Ping:
		ping, _ := aries.As[trustping.Ping](msg)
		if st.DIDDoc == nil {
			glog.Warningln(sm.SourceID, "cannot answer ping, no DID document")
			return sm, nil, nil
		}
		return sm, pingResponse(ping, st.DIDDoc, sm.AgentInfo), nil

	case aries.Query:
		q, _ := aries.As[discovery.Query](msg)
		return sm.send(st, try.To1(aries.New(discovery.NewDisclose(q, supported.Protocols(q.Query)))))

	case aries.Disclose:
		d, _ := aries.As[discovery.Disclose](msg)
		c := *st
		c.Protocols = d.Protocols
		next = sm
		next.State = &c
		return next, nil, nil

	case aries.HandshakeReuse:
		reuse, _ := aries.As[outofband.HandshakeReuse](msg)
		return sm.send(st, try.To1(aries.New(outofband.NewHandshakeReuseAccepted(reuse))))

	case aries.PingResponse, aries.HandshakeReuseAccepted:
		glog.V(1).Infoln(sm.SourceID, "received", msg.Kind)
		return sm, nil, nil
	}
	return sm.rejected(ev)
}

func pingResponse(ping *trustping.Ping, to *did.Doc, from pairwise.AgentInfo) []outgoing {
	if !ping.ResponseRequested {
		return nil
	}
	msg, err := aries.New(trustping.NewPingResponse(ping))
	if err != nil {
		glog.Errorln("ping response:", err)
		return nil
	}
	return []outgoing{{msg: msg, to: to, from: from}}
}

// ProblemError is the problem report the other end sent over the completed
// connection.
type ProblemError struct {
	Report *didexchange.ProblemReport
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("problem report %s: %s", e.Report.ProblemCode, e.Report.Explain)
}

func (sm SM) failed(inv Invitations, p *didexchange.ProblemReport) SM {
	sm.State = &Failed{Invitation: inv, Problem: p}
	return sm
}

// problemOf returns the problem report of the message. The common problem
// report is converted to the connection protocol's one.
func problemOf(msg *aries.Message) (*didexchange.ProblemReport, bool) {
	switch msg.Kind {
	case aries.ConnectionProblemReport:
		return aries.As[didexchange.ProblemReport](msg)
	case aries.CommonProblemReport:
		p, ok := aries.As[common.ProblemReport](msg)
		if !ok {
			return nil, false
		}
		code := ""
		if p.Description != nil {
			code = p.Description.Code
		}
		report := didexchange.NewProblemReport(didexchange.ProblemCode(code), p.Explain(), p.Thread)
		report.ID = p.ID
		return report, true
	}
	return nil, false
}

// applicable tells if the received message drives the current state. It's
// used to pick the message from the inbox.
func (sm SM) applicable(msg *aries.Message) bool {
	_, isProblem := problemOf(msg)
	switch st := sm.State.(type) {
	case *Invited:
		return sm.Actor == Inviter && (msg.Kind == aries.ConnectionRequest || isProblem)
	case *Requested:
		return (msg.Kind == aries.ConnectionResponse || isProblem) &&
			msg.ThreadID() == st.Request.ThreadID()
	case *Responded:
		switch {
		case msg.Kind == aries.Ack || isProblem:
			return msg.ThreadID() == st.Response.ThreadID()
		case msg.Kind == aries.Ping || msg.Kind == aries.PingResponse:
			return true
		}
	case *Completed:
		switch msg.Kind {
		case aries.Ping, aries.PingResponse, aries.Query, aries.Disclose,
			aries.HandshakeReuse, aries.HandshakeReuseAccepted:
			return true
		}
	}
	return false
}

// theirDIDDoc returns the other end's DID document which is known after the
// request or the response.
func (sm SM) theirDIDDoc() *did.Doc {
	switch st := sm.State.(type) {
	case *Requested:
		return st.DIDDoc
	case *Responded:
		return st.DIDDoc
	case *Completed:
		return st.DIDDoc
	}
	return nil
}

// agents returns the pairwise agents whose inboxes are read, the current one
// first.
func (sm SM) agents() []pairwise.AgentInfo {
	if sm.AgentInfo.IsZero() {
		return nil
	}
	agents := []pairwise.AgentInfo{sm.AgentInfo}
	if st, ok := sm.State.(*Responded); ok && !st.PrevAgentInfo.IsZero() && st.PrevAgentInfo != sm.AgentInfo {
		agents = append(agents, st.PrevAgentInfo)
	}
	return agents
}

// owned returns all the pairwise agents the connection has at the mediator.
// The inviter keeps the invitation's agent after the rotation.
func (sm SM) owned() []pairwise.AgentInfo {
	agents := sm.agents()
	if st, ok := sm.State.(*Completed); ok && !st.PrevAgentInfo.IsZero() && st.PrevAgentInfo != sm.AgentInfo {
		agents = append(agents, st.PrevAgentInfo)
	}
	return agents
}
