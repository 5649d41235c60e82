package psm

import (
	"github.com/findy-network/findy-common-go/dto"
)

// DIDRep is one end of the pairwise.
type DIDRep struct {
	DID      string
	VerKey   string
	Endpoint string
}

// PairwiseRep is saved when the connection completes.
type PairwiseRep struct {
	Name       string // the source ID of the connection
	Key        StateKey
	TheirLabel string
	Caller     DIDRep
	Callee     DIDRep
}

func NewPairwiseRep(d []byte) *PairwiseRep {
	p := &PairwiseRep{}
	dto.FromGOB(d, p)
	return p
}

func (p *PairwiseRep) Data() []byte {
	return dto.ToGOB(p)
}

func (p *PairwiseRep) KData() []byte {
	return p.Key.Data()
}
