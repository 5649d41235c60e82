package agency

import (
	"context"

	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Client is the HTTP implementation of Mediator.
type Client struct {
	baseURL string
	tr      *trans.Client
}

var _ Mediator = (*Client)(nil)

func NewClient(cfg *utils.Config, tr *trans.Client) *Client {
	return &Client{baseURL: cfg.AgencyURL, tr: tr}
}

func (c *Client) Info(ctx context.Context) (info *Info, err error) {
	defer err2.Handle(&err, "agency info")

	info = new(Info)
	try.To(c.tr.PostJSON(ctx, c.baseURL+PathInfo, struct{}{}, info, trans.Short))
	if info.Verkey == "" || info.Endpoint == "" {
		return nil, core.Errorf(core.KindInvalidAgencyResponse, "incomplete agency info")
	}
	return info, nil
}

func (c *Client) CreatePairwiseAgent(ctx context.Context, pwDID, pwVK string) (agentDID, agentVK string, err error) {
	defer err2.Handle(&err, "create pairwise agent")

	var resp CreateAgentResp
	try.To(c.tr.PostJSON(ctx, c.baseURL+PathCreateAgent,
		CreateAgentReq{PwDID: pwDID, PwVK: pwVK}, &resp, trans.Short))
	if resp.AgentDID == "" || resp.AgentVK == "" {
		return "", "", core.Errorf(core.KindInvalidAgencyResponse, "no agent in response")
	}
	glog.V(3).Infoln("pairwise agent created:", resp.AgentDID)
	return resp.AgentDID, resp.AgentVK, nil
}

func (c *Client) GetMessages(ctx context.Context, agentDID string, status []MessageStatusCode, uids []string) (msgs []Message, err error) {
	defer err2.Handle(&err, "get messages")

	var resp GetMessagesResp
	try.To(c.tr.PostJSON(ctx, c.baseURL+PathGetMessages,
		GetMessagesReq{AgentDID: agentDID, Status: status, UIDs: uids}, &resp, trans.Short))
	return resp.Messages, nil
}

func (c *Client) UpdateMessageStatus(ctx context.Context, agentDID string, status MessageStatusCode, uids []string) error {
	return c.tr.PostJSON(ctx, c.baseURL+PathUpdateStatus,
		UpdateStatusReq{AgentDID: agentDID, StatusCode: status, UIDs: uids}, nil, trans.Short)
}

func (c *Client) DeleteConnection(ctx context.Context, agentDID string) error {
	return c.tr.PostJSON(ctx, c.baseURL+PathDeleteAgent,
		DeleteAgentReq{AgentDID: agentDID}, nil, trans.Short)
}
