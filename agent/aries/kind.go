package aries

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/basicmessage"
	"github.com/findy-network/findy-didexchange/std/committedanswer"
	"github.com/findy-network/findy-didexchange/std/common"
	"github.com/findy-network/findy-didexchange/std/didexchange"
	"github.com/findy-network/findy-didexchange/std/didexchange/invitation"
	"github.com/findy-network/findy-didexchange/std/discovery"
	"github.com/findy-network/findy-didexchange/std/inviteaction"
	"github.com/findy-network/findy-didexchange/std/issuecredential"
	"github.com/findy-network/findy-didexchange/std/outofband"
	"github.com/findy-network/findy-didexchange/std/presentproof"
	"github.com/findy-network/findy-didexchange/std/questionanswer"
	"github.com/findy-network/findy-didexchange/std/trustping"
)

// Kind is the variant of the Message.
type Kind int

const (
	Generic Kind = iota

	Forward

	ConnectionInvitation
	ConnectionRequest
	ConnectionResponse
	ConnectionProblemReport

	Ping
	PingResponse

	Ack
	CommonProblemReport

	CredentialProposal
	CredentialOffer
	CredentialRequest
	Credential
	CredentialAck
	CredentialReject

	PresentationProposal
	PresentationRequest
	Presentation
	PresentationAck
	PresentationReject

	Query
	Disclose

	BasicMessage

	Question
	Answer
	CommittedQuestion
	CommittedAnswer

	OutOfBandInvitation
	HandshakeReuse
	HandshakeReuseAccepted

	InviteForAction
	InviteActionAck
	InviteActionReject
)

var kindNames = [...]string{
	Generic:                 "Generic",
	Forward:                 "Forward",
	ConnectionInvitation:    "ConnectionInvitation",
	ConnectionRequest:       "ConnectionRequest",
	ConnectionResponse:      "ConnectionResponse",
	ConnectionProblemReport: "ConnectionProblemReport",
	Ping:                    "Ping",
	PingResponse:            "PingResponse",
	Ack:                     "Ack",
	CommonProblemReport:     "CommonProblemReport",
	CredentialProposal:      "CredentialProposal",
	CredentialOffer:         "CredentialOffer",
	CredentialRequest:       "CredentialRequest",
	Credential:              "Credential",
	CredentialAck:           "CredentialAck",
	CredentialReject:        "CredentialReject",
	PresentationProposal:    "PresentationProposal",
	PresentationRequest:     "PresentationRequest",
	Presentation:            "Presentation",
	PresentationAck:         "PresentationAck",
	PresentationReject:      "PresentationReject",
	Query:                   "Query",
	Disclose:                "Disclose",
	BasicMessage:            "BasicMessage",
	Question:                "Question",
	Answer:                  "Answer",
	CommittedQuestion:       "CommittedQuestion",
	CommittedAnswer:         "CommittedAnswer",
	OutOfBandInvitation:     "OutOfBandInvitation",
	HandshakeReuse:          "HandshakeReuse",
	HandshakeReuseAccepted:  "HandshakeReuseAccepted",
	InviteForAction:         "InviteForAction",
	InviteActionAck:         "InviteActionAck",
	InviteActionReject:      "InviteActionReject",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// register adds the Go struct T as the decoder of the family's message type.
func register[T any](family pltype.Family, msgType string, kind Kind) {
	Creator.Add(family, msgType, kind, func(data []byte) (any, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}

func init() {
	register[common.Forward](pltype.Routing, pltype.HandlerForward, Forward)

	register[invitation.Invitation](pltype.Connections, pltype.HandlerInvitation, ConnectionInvitation)
	register[didexchange.Request](pltype.Connections, pltype.HandlerRequest, ConnectionRequest)
	register[didexchange.Response](pltype.Connections, pltype.HandlerResponse, ConnectionResponse)
	register[didexchange.ProblemReport](pltype.Connections, pltype.HandlerConnProblem, ConnectionProblemReport)

	register[trustping.Ping](pltype.TrustPing, pltype.HandlerPing, Ping)
	register[trustping.PingResponse](pltype.TrustPing, pltype.HandlerPingResponse, PingResponse)

	register[common.Ack](pltype.Notification, pltype.HandlerAck, Ack)
	register[common.ProblemReport](pltype.ReportProblem, pltype.HandlerProblemReport, CommonProblemReport)

	register[issuecredential.Propose](pltype.CredentialIssuance, pltype.HandlerIssueCredentialPropose, CredentialProposal)
	register[issuecredential.Offer](pltype.CredentialIssuance, pltype.HandlerIssueCredentialOffer, CredentialOffer)
	register[issuecredential.Request](pltype.CredentialIssuance, pltype.HandlerIssueCredentialRequest, CredentialRequest)
	register[issuecredential.Issue](pltype.CredentialIssuance, pltype.HandlerIssueCredentialIssue, Credential)
	register[common.Ack](pltype.CredentialIssuance, pltype.HandlerAck, CredentialAck)
	register[common.ProblemReport](pltype.CredentialIssuance, pltype.HandlerProblemReport, CredentialReject)

	register[presentproof.Propose](pltype.PresentProof, pltype.HandlerPresentProofPropose, PresentationProposal)
	register[presentproof.Request](pltype.PresentProof, pltype.HandlerPresentProofRequest, PresentationRequest)
	register[presentproof.Presentation](pltype.PresentProof, pltype.HandlerPresentProofPresentation, Presentation)
	register[common.Ack](pltype.PresentProof, pltype.HandlerAck, PresentationAck)
	register[common.ProblemReport](pltype.PresentProof, pltype.HandlerProblemReport, PresentationReject)

	register[discovery.Query](pltype.DiscoveryFeatures, pltype.HandlerQuery, Query)
	register[discovery.Disclose](pltype.DiscoveryFeatures, pltype.HandlerDisclose, Disclose)

	register[basicmessage.Basicmessage](pltype.Basicmessage, pltype.HandlerMessage, BasicMessage)

	register[questionanswer.Question](pltype.QuestionAnswer, pltype.HandlerQuestion, Question)
	register[questionanswer.Answer](pltype.QuestionAnswer, pltype.HandlerAnswer, Answer)
	register[committedanswer.Question](pltype.Committedanswer, pltype.HandlerQuestion, CommittedQuestion)
	register[committedanswer.Answer](pltype.Committedanswer, pltype.HandlerAnswer, CommittedAnswer)

	register[outofband.Invitation](pltype.Outofband, pltype.HandlerInvitation, OutOfBandInvitation)
	register[outofband.HandshakeReuse](pltype.Outofband, pltype.HandlerHandshakeReuse, HandshakeReuse)
	register[outofband.HandshakeReuseAccepted](pltype.Outofband, pltype.HandlerHandshakeReuseAccepted, HandshakeReuseAccepted)

	register[inviteaction.Invite](pltype.InviteAction, pltype.HandlerInvite, InviteForAction)
	register[common.Ack](pltype.InviteAction, pltype.HandlerAck, InviteActionAck)
	register[common.ProblemReport](pltype.InviteAction, pltype.HandlerProblemReport, InviteActionReject)
}
