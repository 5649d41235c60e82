/*
Package agency is the mediator of the agents. The mediator owns a pairwise
agent for every connection of an edge agent. The other end sends its messages
to the mediator's message endpoint wrapped in Forward envelopes, and the
mediator stores them to the inbox of the pairwise agent until the edge agent
polls them.

The package has the Mediator interface with the HTTP client implementation
used by the edge agents, and Agency, the in-process mediator which the
server package publishes over HTTP.
*/
package agency

import (
	"context"
)

const (
	PathMsg          = "/agency/msg"
	PathInfo         = "/agency/info"
	PathCreateAgent  = "/agency/agent"
	PathGetMessages  = "/agency/messages"
	PathUpdateStatus = "/agency/messages/status"
	PathDeleteAgent  = "/agency/agent/delete"
)

// Mediator is the control interface of the mediator.
type Mediator interface {
	// Info returns the identity and the message endpoint of the mediator.
	Info(ctx context.Context) (*Info, error)

	// CreatePairwiseAgent creates the mediator side agent of our pairwise
	// DID. The messages sent to the agent are stored until fetched.
	CreatePairwiseAgent(ctx context.Context, pwDID, pwVK string) (agentDID, agentVK string, err error)

	// GetMessages returns the messages of the agent filtered by the status
	// codes and the uids. Empty filters match everything.
	GetMessages(ctx context.Context, agentDID string, status []MessageStatusCode, uids []string) ([]Message, error)

	UpdateMessageStatus(ctx context.Context, agentDID string, status MessageStatusCode, uids []string) error

	// DeleteConnection removes the pairwise agent and its inbox.
	DeleteConnection(ctx context.Context, agentDID string) error
}

type Info struct {
	DID      string `json:"did"`
	Verkey   string `json:"verkey"`
	Endpoint string `json:"endpoint"`
}

// Message is one inbox item. Payload is the envelope addressed to the
// pairwise verkey of the edge agent.
type Message struct {
	UID        string            `json:"uid"`
	StatusCode MessageStatusCode `json:"statusCode"`
	Payload    []byte            `json:"payload"`
}

type CreateAgentReq struct {
	PwDID string `json:"pwDID"`
	PwVK  string `json:"pwVK"`
}

type CreateAgentResp struct {
	AgentDID string `json:"agentDID"`
	AgentVK  string `json:"agentVK"`
}

type GetMessagesReq struct {
	AgentDID string              `json:"agentDID"`
	Status   []MessageStatusCode `json:"status,omitempty"`
	UIDs     []string            `json:"uids,omitempty"`
}

type GetMessagesResp struct {
	Messages []Message `json:"messages"`
}

type UpdateStatusReq struct {
	AgentDID   string            `json:"agentDID"`
	StatusCode MessageStatusCode `json:"statusCode"`
	UIDs       []string          `json:"uids"`
}

type DeleteAgentReq struct {
	AgentDID string `json:"agentDID"`
}
