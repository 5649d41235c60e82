package agency

import (
	"fmt"

	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/golang/glog"
)

// selfKey is the register entry of the agency's own DID and verkey.
const selfKey = "agency"

func (a *Agency) loadRegister() error {
	return a.register.Load(a.cfg.RegisterFile)
}

// saveRegister saves the pairwise agents to the file if there is one. An
// error is logged only, the in-memory register stays valid.
func (a *Agency) saveRegister() {
	if a.cfg.RegisterFile == "" {
		return
	}
	if err := a.register.Save(a.cfg.RegisterFile); err != nil {
		glog.Error(err)
	}
}

// ResetRegister cleans the register file empty. All of the pairwise agents
// are lost.
func ResetRegister(filename string) error {
	fmt.Println("Note! Resetting agency register, pairwise agents are lost.")
	var r utils.Reg
	return r.Reset(filename)
}

// SaveRegister writes the register file. It's called on a schedule by the
// mediator command and on Close.
func (a *Agency) SaveRegister() {
	a.l.RLock()
	defer a.l.RUnlock()
	a.saveRegister()
}
