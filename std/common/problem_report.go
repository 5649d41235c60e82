package common

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// ProblemReport is the report-problem/1.0/problem-report. Like Ack it's
// used in many families.
type ProblemReport struct {
	Type           pltype.MessageType `json:"@type"`
	ID             string             `json:"@id"`
	Description    *Code              `json:"description,omitempty"`
	Comment        string             `json:"comment,omitempty"`
	ExplainLongTxt string             `json:"explain-ltxt,omitempty"` // ACApy
	L10n           *decorator.L10n    `json:"~l10n,omitempty"`
	Thread         *decorator.Thread  `json:"~thread,omitempty"`
}

// Code represents a problem report code
type Code struct {
	Code string `json:"code"`
	En   string `json:"en,omitempty"`
}

// NewProblemReport returns a report-problem in the thread.
func NewProblemReport(code, comment string, thread *decorator.Thread) *ProblemReport {
	return &ProblemReport{
		Type:        pltype.New(pltype.ReportProblem, pltype.HandlerProblemReport),
		ID:          uuid.New().String(),
		Description: &Code{Code: code},
		Comment:     comment,
		Thread:      thread.Clone(),
	}
}

// WithFamily moves the report to the family, e.g. a credential rejection.
func (p *ProblemReport) WithFamily(f pltype.Family) *ProblemReport {
	prefix := p.Type.Prefix
	p.Type = pltype.New(f, pltype.HandlerProblemReport)
	if f == pltype.InviteAction {
		prefix = pltype.PrefixEndpoint
	}
	p.Type.Prefix = prefix
	return p
}

// Explain returns the most descriptive text of the report.
func (p *ProblemReport) Explain() string {
	switch {
	case p.Comment != "":
		return p.Comment
	case p.ExplainLongTxt != "":
		return p.ExplainLongTxt
	case p.Description != nil && p.Description.En != "":
		return p.Description.En
	case p.Description != nil:
		return p.Description.Code
	}
	return ""
}
