package agency

import (
	"context"
	"errors"
	"sync"

	"github.com/findy-network/findy-didexchange/agent/envelope"
	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// maxHops limits the Forward layers we peel from one incoming message.
const maxHops = 8

var (
	ErrUnknownAgent = errors.New("unknown agent")
	ErrNotForUs     = errors.New("message isn't for this agency")
)

type Config struct {
	// HostAddr is the base URL the world sees, the message endpoint is
	// built from it.
	HostAddr string

	// Seed of the agency's own key, empty means random.
	Seed string

	// RegisterFile is where the pairwise agents are saved. Empty keeps them
	// in memory.
	RegisterFile string

	// Wallet holds the keys of the agency and its agents. Nil means a memory
	// wallet.
	Wallet *ssi.Wallet
}

// Agency is the in-process mediator.
type Agency struct {
	l sync.RWMutex

	info     Info
	cfg      Config
	register utils.Reg // agentDID -> agentVK, pwDID, pwVK
	wallet   *ssi.Wallet
	env      *envelope.Envelope
	byPwVK   map[string]string
	inboxes  map[string][]*Message
}

var _ Mediator = (*Agency)(nil)

// New creates the agency and loads the pairwise agents of the register file.
func New(cfg Config) (a *Agency, err error) {
	defer err2.Handle(&err, "new agency")

	w := cfg.Wallet
	if w == nil {
		w = ssi.NewMemWallet()
	}
	a = &Agency{
		cfg:     cfg,
		wallet:  w,
		env:     envelope.New(w),
		byPwVK:  make(map[string]string),
		inboxes: make(map[string][]*Message),
	}
	try.To(a.loadRegister())

	if self, ok := a.register.Get(selfKey); ok && len(self) == 2 && w.Has(self[1]) {
		a.info.DID, a.info.Verkey = self[0], self[1]
	} else {
		a.info.DID, a.info.Verkey = try.To2(w.CreateAndStoreMyDID(cfg.Seed))
		a.register.Add(selfKey, a.info.DID, a.info.Verkey)
		a.saveRegister()
	}
	a.info.Endpoint = cfg.HostAddr + PathMsg

	a.register.EnumValues(func(agentDID string, v []string) bool {
		if agentDID != selfKey && len(v) == 3 {
			a.byPwVK[v[2]] = agentDID
			a.inboxes[agentDID] = nil
		}
		return true
	})
	glog.V(1).Infof("agency %s started with %d agents", a.info.DID, len(a.inboxes))
	return a, nil
}

func (a *Agency) Info(_ context.Context) (*Info, error) {
	a.l.RLock()
	defer a.l.RUnlock()
	info := a.info
	return &info, nil
}

// SetHostAddr sets the base URL of the message endpoint. The server calls
// it when the address is known only after the listener is up.
func (a *Agency) SetHostAddr(addr string) {
	a.l.Lock()
	defer a.l.Unlock()
	a.cfg.HostAddr = addr
	a.info.Endpoint = addr + PathMsg
}

func (a *Agency) CreatePairwiseAgent(_ context.Context, pwDID, pwVK string) (agentDID, agentVK string, err error) {
	defer err2.Handle(&err, "create pairwise agent")

	agentDID, agentVK = try.To2(a.wallet.CreateAndStoreMyDID(""))

	a.l.Lock()
	a.byPwVK[pwVK] = agentDID
	a.inboxes[agentDID] = nil
	a.l.Unlock()

	a.register.Add(agentDID, agentVK, pwDID, pwVK)
	a.saveRegister()

	glog.V(1).Infoln("pairwise agent", agentDID, "for", pwDID)
	return agentDID, agentVK, nil
}

func (a *Agency) GetMessages(_ context.Context, agentDID string, status []MessageStatusCode, uids []string) ([]Message, error) {
	a.l.RLock()
	defer a.l.RUnlock()

	inbox, ok := a.inboxes[agentDID]
	if !ok {
		return nil, ErrUnknownAgent
	}
	msgs := make([]Message, 0, len(inbox))
	for _, m := range inbox {
		if match(m, status, uids) {
			msgs = append(msgs, *m)
		}
	}
	glog.V(3).Infof("%s: %d/%d messages", agentDID, len(msgs), len(inbox))
	return msgs, nil
}

func match(m *Message, status []MessageStatusCode, uids []string) bool {
	if len(status) > 0 && !contains(status, m.StatusCode) {
		return false
	}
	return len(uids) == 0 || contains(uids, m.UID)
}

func contains[T comparable](s []T, v T) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

func (a *Agency) UpdateMessageStatus(_ context.Context, agentDID string, status MessageStatusCode, uids []string) error {
	if !status.Valid() {
		return core.Errorf(core.KindInvalidOption, "status code %d", status)
	}
	a.l.Lock()
	defer a.l.Unlock()

	inbox, ok := a.inboxes[agentDID]
	if !ok {
		return ErrUnknownAgent
	}
	for _, m := range inbox {
		if contains(uids, m.UID) {
			m.StatusCode = status
		}
	}
	return nil
}

func (a *Agency) DeleteConnection(_ context.Context, agentDID string) error {
	a.l.Lock()
	if _, ok := a.inboxes[agentDID]; !ok {
		a.l.Unlock()
		return ErrUnknownAgent
	}
	delete(a.inboxes, agentDID)
	for pwVK, did := range a.byPwVK {
		if did == agentDID {
			delete(a.byPwVK, pwVK)
		}
	}
	a.l.Unlock()

	a.register.Delete(agentDID)
	a.saveRegister()
	glog.V(1).Infoln("pairwise agent deleted:", agentDID)
	return nil
}

// Receive peels the Forward layers addressed to the agency and its agents
// and stores the inner envelope to the inbox of the agent whose edge agent
// the last Forward is addressed to.
func (a *Agency) Receive(data []byte) (err error) {
	defer err2.Handle(&err, "agency receive")

	for hop := 0; hop < maxHops; hop++ {
		to, inner := try.To2(a.env.OpenForward(data))
		if agentDID, ok := a.agentOf(to); ok {
			a.store(agentDID, inner)
			return nil
		}
		if !a.wallet.Has(to) {
			glog.Warningln("forward to unknown key:", to)
			return ErrUnknownAgent
		}
		data = inner
	}
	return ErrNotForUs
}

func (a *Agency) agentOf(pwVK string) (string, bool) {
	a.l.RLock()
	defer a.l.RUnlock()
	did, ok := a.byPwVK[pwVK]
	return did, ok
}

func (a *Agency) store(agentDID string, payload []byte) {
	a.l.Lock()
	defer a.l.Unlock()

	m := &Message{
		UID:        uuid.New().String(),
		StatusCode: Received,
		Payload:    payload,
	}
	a.inboxes[agentDID] = append(a.inboxes[agentDID], m)
	glog.V(3).Infoln("message", m.UID, "stored for", agentDID)
}

// AgentCount returns the number of the pairwise agents.
func (a *Agency) AgentCount() int {
	a.l.RLock()
	defer a.l.RUnlock()
	return len(a.inboxes)
}

// Close saves the register and closes the wallet.
func (a *Agency) Close() error {
	a.saveRegister()
	return a.wallet.Close()
}
