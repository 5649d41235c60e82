/*
Package connection is the DID exchange connection of the agent: the
connections/1.0 protocol state machine and the facade the applications use.

The state machine is a pure transition function over an explicit state value.
The facade does the I/O around it: it creates the pairwise agents at the
mediator, reads their inboxes, sends the messages the transition returns and
only then takes the next state into use. A failing send leaves the connection
in the state it was, so the same step can be run again.
*/
package connection

import (
	"context"
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/basicmessage"
	"github.com/findy-network/findy-didexchange/std/committedanswer"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/didexchange"
	"github.com/findy-network/findy-didexchange/std/didexchange/invitation"
	"github.com/findy-network/findy-didexchange/std/discovery"
	"github.com/findy-network/findy-didexchange/std/inviteaction"
	"github.com/findy-network/findy-didexchange/std/outofband"
	"github.com/findy-network/findy-didexchange/std/questionanswer"
	"github.com/findy-network/findy-didexchange/std/trustping"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Connection is one pairwise relationship. It isn't thread safe, use the
// Connections registry to share them.
type Connection struct {
	sm  SM
	env *pairwise.Env
}

// Create returns the inviter's connection. Connect makes the invitation.
func Create(sourceID string, env *pairwise.Env) *Connection {
	return &Connection{sm: newSM(sourceID, Inviter, &Initialized{}), env: env}
}

// CreateOutOfBand returns the inviter's connection which invites with an
// out-of-band invitation. Without the handshake the invitation must carry
// the request attachment, which is a JSON value.
func CreateOutOfBand(sourceID string, env *pairwise.Env, goalCode, goal string, handshake bool, requestAttach string) (c *Connection, err error) {
	defer err2.Handle(&err, "create out-of-band %s", sourceID)

	p := &OutOfBandParams{GoalCode: goalCode, Goal: goal, Handshake: handshake}
	if requestAttach != "" {
		if !json.Valid([]byte(requestAttach)) {
			return nil, core.Errorf(core.KindInvalidJSON, "request attachment isn't JSON")
		}
		p.RequestAttach = json.RawMessage(requestAttach)
	}
	if !handshake && len(p.RequestAttach) == 0 {
		return nil, core.Errorf(core.KindInvalidOption,
			"out-of-band invitation needs handshake or request attachment")
	}
	return &Connection{sm: newSM(sourceID, Inviter, &Initialized{OutOfBand: p}), env: env}, nil
}

// CreateWithInvite returns the invitee's connection of the invitation.
func CreateWithInvite(sourceID string, env *pairwise.Env, inv *invitation.Invitation) (c *Connection, err error) {
	defer err2.Handle(&err, "create with invite %s", sourceID)

	try.To(inv.Validate())
	c = &Connection{sm: newSM(sourceID, Invitee, &Initialized{}), env: env}
	try.To(c.step(context.Background(), invitationEvent{inv: Invitations{Connection: inv}}))
	return c, nil
}

// CreateWithOutOfBandInvite returns the invitee's connection of the
// out-of-band invitation. An invitation without handshake completes the
// connection, and its pairwise agent is created here.
func CreateWithOutOfBandInvite(ctx context.Context, sourceID string, env *pairwise.Env, inv *outofband.Invitation) (c *Connection, err error) {
	defer err2.Handle(&err, "create with out-of-band invite %s", sourceID)

	try.To(inv.Validate())
	try.To(inv.NormalizeServiceKeys())

	ev := invitationEvent{inv: Invitations{OutOfBand: inv}}
	if inv.WithoutHandshake() {
		ev.agent = try.To1(pairwise.New(ctx, env))
	}
	c = &Connection{sm: newSM(sourceID, Invitee, &Initialized{}), env: env}
	try.To(c.step(ctx, ev))
	return c, nil
}

// CreateWithInviteJSON reads the invitation, either kind, and returns the
// invitee's connection of it.
func CreateWithInviteJSON(ctx context.Context, sourceID string, env *pairwise.Env, data []byte) (c *Connection, err error) {
	defer err2.Handle(&err)

	inv := try.To1(ParseInvitation(data))
	if inv.OutOfBand != nil {
		return CreateWithOutOfBandInvite(ctx, sourceID, env, inv.OutOfBand)
	}
	return CreateWithInvite(sourceID, env, inv.Connection)
}

// ParseInvitation reads a connection or an out-of-band invitation.
func ParseInvitation(data []byte) (inv Invitations, err error) {
	defer err2.Handle(&err, "parse invitation")

	msg := try.To1(aries.DecodeStrict(data))
	switch msg.Kind {
	case aries.ConnectionInvitation:
		inv.Connection, _ = aries.As[invitation.Invitation](msg)
	case aries.OutOfBandInvitation:
		inv.OutOfBand, _ = aries.As[outofband.Invitation](msg)
	default:
		return inv, core.Errorf(core.KindInvalidJSON, "%s isn't an invitation", msg.Type)
	}
	return inv, nil
}

// step runs the transition and sends its messages. The next state is taken
// into use only when the sends succeed.
func (c *Connection) step(ctx context.Context, ev event) error {
	next, out, err := c.sm.transition(ev, c.env)
	if err != nil {
		return err
	}
	for _, o := range out {
		if o.to == nil {
			glog.Warningln(c.sm.SourceID, "no receiver for", o.msg.Kind)
			continue
		}
		if err := o.from.SendMessage(ctx, c.env, o.msg, o.to); err != nil {
			if o.bestEffort {
				glog.Warningln(c.sm.SourceID, "send", o.msg.Kind, "failed:", err)
				continue
			}
			return err
		}
	}
	if next.State.Name() != c.sm.State.Name() {
		glog.V(1).Infof("%s %s: %s -> %s", c.sm.SourceID, c.sm.Actor,
			c.sm.State.Name(), next.State.Name())
	}
	c.sm = next
	return nil
}

func (c *Connection) canConnect() bool {
	switch c.sm.State.(type) {
	case *Initialized:
		return c.sm.Actor == Inviter
	case *Invited:
		return c.sm.Actor == Invitee
	}
	return false
}

// Connect makes the invitation for the inviter and sends the request for the
// invitee. The pairwise agent is created unless the options give one.
func (c *Connection) Connect(ctx context.Context, opts *Options) (err error) {
	defer err2.Handle(&err, "connect %s", c.sm.SourceID)

	try.To(opts.Validate())
	if !c.canConnect() {
		return core.Errorf(core.KindInvalidState, "cannot connect in %s %s", c.sm.Actor, c.sm.State.Name())
	}
	agent := c.sm.AgentInfo
	created := false
	switch {
	case opts != nil && opts.PairwiseAgentInfo != nil:
		agent = *opts.PairwiseAgentInfo
	case agent.IsZero():
		agent = try.To1(pairwise.New(ctx, c.env))
		created = true
	}
	if err := c.step(ctx, connectEvent{agent: agent, opts: opts}); err != nil {
		if created {
			c.deleteAgent(ctx, agent)
		}
		return err
	}
	return nil
}

func (c *Connection) deleteAgent(ctx context.Context, ai pairwise.AgentInfo) {
	if err := ai.Delete(ctx, c.env); err != nil {
		glog.Warningln(c.sm.SourceID, "delete unused agent:", err)
	}
}

// FindMessageToHandle returns the first inbox message which drives the
// current state. The inbox of the current pairwise agent is read first and
// then the one of the previous agent.
func (c *Connection) FindMessageToHandle(ctx context.Context) (item *pairwise.Item, err error) {
	item, _, err = c.findMessage(ctx)
	return item, err
}

func (c *Connection) findMessage(ctx context.Context) (item *pairwise.Item, owner pairwise.AgentInfo, err error) {
	defer err2.Handle(&err, "find message")

	for _, ai := range c.sm.agents() {
		items := try.To1(ai.Messages(ctx, c.env))
		for i := range items {
			if c.sm.applicable(items[i].Msg) {
				glog.V(3).Infoln(c.sm.SourceID, "found", items[i].Msg.Kind, "from", ai.AgentDID)
				return &items[i], ai, nil
			}
		}
	}
	return nil, owner, nil
}

// UpdateState runs one transition with the message found from the inboxes.
// The message is marked reviewed after it's handled. No message is no
// error.
func (c *Connection) UpdateState(ctx context.Context) (err error) {
	defer err2.Handle(&err, "update state %s", c.sm.SourceID)

	switch c.sm.State.(type) {
	case *Initialized, *Failed:
		return nil
	}
	item, owner := try.To2(c.findMessage(ctx))
	if item == nil {
		return nil
	}
	try.To(c.receive(ctx, item.Msg, item.SenderVK))
	return owner.UpdateMessageStatus(ctx, c.env, item.UID)
}

// UpdateStateWithMessage runs one transition with the message JSON.
func (c *Connection) UpdateStateWithMessage(ctx context.Context, data []byte) (err error) {
	defer err2.Handle(&err, "update state %s", c.sm.SourceID)

	msg := try.To1(aries.DecodeStrict(data))
	return c.receive(ctx, msg, "")
}

func (c *Connection) receive(ctx context.Context, msg *aries.Message, senderVK string) (err error) {
	defer err2.Handle(&err)

	ev := receivedEvent{msg: msg, senderVK: senderVK}
	if c.rotates(msg) {
		ev.newAgent = try.To1(pairwise.New(ctx, c.env))
	}
	if err := c.step(ctx, ev); err != nil {
		if !ev.newAgent.IsZero() {
			c.deleteAgent(ctx, ev.newAgent)
		}
		return err
	}
	if _, failed := c.sm.State.(*Failed); failed && !ev.newAgent.IsZero() {
		c.deleteAgent(ctx, ev.newAgent)
	}
	return nil
}

// rotates tells if the inviter answers the message with a new agent.
func (c *Connection) rotates(msg *aries.Message) bool {
	_, invited := c.sm.State.(*Invited)
	return invited && c.sm.Actor == Inviter &&
		msg.Kind == aries.ConnectionRequest && c.sm.Options.updateAgentInfo()
}

// Messages returns the unread messages of the connection's pairwise agent.
func (c *Connection) Messages(ctx context.Context) ([]pairwise.Item, error) {
	if c.sm.AgentInfo.IsZero() {
		return nil, core.Errorf(core.KindNotReady, "no pairwise agent")
	}
	return c.sm.AgentInfo.Messages(ctx, c.env)
}

func (c *Connection) MessageByID(ctx context.Context, uid string) (*pairwise.Item, error) {
	if c.sm.AgentInfo.IsZero() {
		return nil, core.Errorf(core.KindNotReady, "no pairwise agent")
	}
	return c.sm.AgentInfo.MessageByID(ctx, c.env, uid)
}

// UpdateMessageStatus marks the messages reviewed.
func (c *Connection) UpdateMessageStatus(ctx context.Context, uids ...string) error {
	if c.sm.AgentInfo.IsZero() {
		return core.Errorf(core.KindNotReady, "no pairwise agent")
	}
	return c.sm.AgentInfo.UpdateMessageStatus(ctx, c.env, uids...)
}

func (c *Connection) completed() (*Completed, error) {
	st, ok := c.sm.State.(*Completed)
	if !ok {
		return nil, core.Errorf(core.KindNotReady, "connection is %s", c.sm.State.Name())
	}
	return st, nil
}

// SendMessage sends the message over the completed connection.
func (c *Connection) SendMessage(ctx context.Context, msg *aries.Message) (err error) {
	defer err2.Handle(&err, "send %s", msg.Kind)

	return c.step(ctx, sendEvent{msg: msg})
}

// SendGenericMessage sends the text as is if it's a JSON message and as a
// basic message otherwise.
func (c *Connection) SendGenericMessage(ctx context.Context, text string) (msg *aries.Message, err error) {
	defer err2.Handle(&err, "send generic")

	if json.Valid([]byte(text)) {
		msg, _ = aries.Decode([]byte(text))
	}
	if msg == nil {
		msg = try.To1(aries.New(basicmessage.New(text)))
	}
	try.To(c.step(ctx, sendEvent{msg: msg}))
	return msg, nil
}

// SendPing sends a trust ping which asks for a response. A ping can be sent
// also by the inviter which waits for the ack.
func (c *Connection) SendPing(ctx context.Context, comment string) (ping *trustping.Ping, err error) {
	defer err2.Handle(&err, "send ping")

	ping = trustping.NewPing(comment)
	try.To(c.step(ctx, pingEvent{ping: ping}))
	return ping, nil
}

// SendDiscoveryFeatures asks the protocols of the other end. The answer is
// stored when it's received.
func (c *Connection) SendDiscoveryFeatures(ctx context.Context, query, comment string) (q *discovery.Query, err error) {
	defer err2.Handle(&err, "send discovery features")

	q = discovery.NewQuery(query, comment)
	try.To(c.step(ctx, sendEvent{msg: try.To1(aries.New(q))}))
	return q, nil
}

// SendAnswer answers the question JSON with the response JSON. The question
// is either a questionanswer or a committedanswer question and the response
// is one of its valid responses.
func (c *Connection) SendAnswer(ctx context.Context, question, response []byte) (answer *aries.Message, err error) {
	defer err2.Handle(&err, "send answer")

	_ = try.To1(c.completed())
	q := try.To1(aries.DecodeStrict(question))
	vk := c.sm.AgentInfo.PwVK
	switch q.Kind {
	case aries.Question:
		var r questionanswer.Response
		try.To(unmarshal(response, &r))
		qq, _ := aries.As[questionanswer.Question](q)
		answer = try.To1(aries.New(try.To1(questionanswer.NewAnswer(qq, r, c.env.Wallet, vk))))
	case aries.CommittedQuestion:
		var r committedanswer.Response
		try.To(unmarshal(response, &r))
		qq, _ := aries.As[committedanswer.Question](q)
		answer = try.To1(aries.New(try.To1(committedanswer.NewAnswer(qq, r, c.env.Wallet, vk))))
	default:
		return nil, core.Errorf(core.KindInvalidJSON, "%s isn't a question", q.Kind)
	}
	try.To(c.step(ctx, sendEvent{msg: answer}))
	return answer, nil
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return core.Wrap(core.KindInvalidJSON, err, "response")
	}
	return nil
}

func (c *Connection) SendInviteAction(ctx context.Context, data inviteaction.Data) (inv *inviteaction.Invite, err error) {
	defer err2.Handle(&err, "send invite action")

	inv = inviteaction.NewInvite(data)
	try.To(c.step(ctx, sendEvent{msg: try.To1(aries.New(inv))}))
	return inv, nil
}

// SendHandshakeReuse tells the inviter of the out-of-band invitation that
// this connection is used instead of a new one.
func (c *Connection) SendHandshakeReuse(ctx context.Context, oob *outofband.Invitation) (reuse *outofband.HandshakeReuse, err error) {
	defer err2.Handle(&err, "send handshake reuse")

	reuse = outofband.NewHandshakeReuse(oob)
	try.To(c.step(ctx, sendEvent{msg: try.To1(aries.New(reuse))}))
	return reuse, nil
}

// GetInviteDetails returns the invitation of the connection.
func (c *Connection) GetInviteDetails() (*aries.Message, error) {
	return invitationOf(c.sm.State).Message()
}

// GetProblemReportMessage returns the problem report which failed the
// connection, nil if there isn't one.
func (c *Connection) GetProblemReportMessage() *didexchange.ProblemReport {
	if st, ok := c.sm.State.(*Failed); ok {
		return st.Problem
	}
	return nil
}

// Delete removes the pairwise agents of the connection from the mediator.
// The state doesn't change.
func (c *Connection) Delete(ctx context.Context) (err error) {
	defer err2.Handle(&err, "delete %s", c.sm.SourceID)

	for _, ai := range c.sm.owned() {
		try.To(ai.Delete(ctx, c.env))
	}
	return nil
}

func (c *Connection) SourceID() string              { return c.sm.SourceID }
func (c *Connection) Actor() Actor                  { return c.sm.Actor }
func (c *Connection) State() State                  { return c.sm.State }
func (c *Connection) StateCode() StateCode          { return c.sm.State.Code() }
func (c *Connection) AgentInfo() pairwise.AgentInfo { return c.sm.AgentInfo }
func (c *Connection) TheirDIDDoc() *did.Doc         { return c.sm.theirDIDDoc() }

// ThreadID returns the thread of the connection protocol. Before the
// request it's the invitation's @id.
func (c *Connection) ThreadID() string {
	switch st := c.sm.State.(type) {
	case *Requested:
		return st.Request.ThreadID()
	case *Responded:
		return st.Response.ThreadID()
	case *Completed:
		if st.Thread != nil && st.Thread.ID != "" {
			return st.Thread.ID
		}
	}
	return invitationOf(c.sm.State).ID()
}

// RemoteVK returns the recipient key of the other end.
func (c *Connection) RemoteVK() (string, error) {
	doc := c.sm.theirDIDDoc()
	if doc == nil {
		return "", core.Errorf(core.KindNotReady, "no DID document of the other end")
	}
	keys, _ := doc.ResolveKeys()
	if len(keys) == 0 {
		return "", core.Errorf(core.KindInvalidDIDDoc, "no recipient keys")
	}
	return keys[0], nil
}

// Protocols returns what the other end disclosed. Nil when nothing was
// asked or the connection completed without a handshake.
func (c *Connection) Protocols() []discovery.ProtocolDescriptor {
	if st, ok := c.sm.State.(*Completed); ok {
		return st.Protocols
	}
	return nil
}
