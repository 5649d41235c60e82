// Package pltype is the message type registry. It parses and builds the
// `@type` strings of the agent-to-agent messages:
//
//	{prefix}/{family}/{version}/{type}
//
// The family string of a type is preserved even when it isn't known, so a
// peer's newer protocol still produces a usable MessageType.
package pltype

// Prefix constants
const (
	Aries       = "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec" // legacy Aries prefix
	DIDOrgAries = "https://didcomm.org"                 // current Aries prefix
)

// Family wire names
const (
	ProtocolRouting           = "routing"
	ProtocolConnection        = "connections"
	ProtocolNotification      = "notification"
	ProtocolSignature         = "signature"
	ProtocolIssueCredential   = "issue-credential"
	ProtocolReportProblem     = "report-problem"
	ProtocolPresentProof      = "present-proof"
	ProtocolTrustPing         = "trust_ping"
	ProtocolDiscoveryFeatures = "discover-features"
	ProtocolBasicMessage      = "basicmessage"
	ProtocolOutOfBand         = "out-of-band"
	ProtocolQuestionAnswer    = "questionanswer"
	ProtocolCommittedAnswer   = "committedanswer"
	ProtocolInviteAction      = "invite-action"
)

// Message (bare type) names
const (
	HandlerForward = "forward"

	HandlerInvitation    = "invitation"
	HandlerRequest       = "request"
	HandlerResponse      = "response"
	HandlerConnProblem   = "problem_report"
	HandlerEd25519Single = "ed25519Sha512_single"

	HandlerPing         = "ping"
	HandlerPingResponse = "ping_response"

	HandlerAck           = "ack"
	HandlerProblemReport = "problem-report"

	HandlerIssueCredentialOffer   = "offer-credential"
	HandlerIssueCredentialIssue   = "issue-credential"
	HandlerIssueCredentialPropose = "propose-credential"
	HandlerIssueCredentialRequest = "request-credential"

	HandlerPresentProofPropose      = "propose-presentation"
	HandlerPresentProofRequest      = "request-presentation"
	HandlerPresentProofPresentation = "presentation"

	HandlerQuery    = "query"
	HandlerDisclose = "disclose"

	HandlerMessage = "message"

	HandlerHandshakeReuse         = "handshake-reuse"
	HandlerHandshakeReuseAccepted = "handshake-reuse-accepted"

	HandlerQuestion = "question"
	HandlerAnswer   = "answer"

	HandlerInvite = "invite"
)

// SupportedHandshakeProtocol is the handshake we can run after an out-of-band
// invitation.
const SupportedHandshakeProtocol = ProtocolConnection + "/1.0"
