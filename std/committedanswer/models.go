// Package committedanswer is the committedanswer/1.0 protocol model where
// the answer commits to the chosen response by signing its nonce.
package committedanswer

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Question struct {
	Type           pltype.MessageType `json:"@type"`
	ID             string             `json:"@id"`
	QuestionText   string             `json:"question_text"`
	QuestionDetail string             `json:"question_detail,omitempty"`
	ExternalLinks  []any              `json:"external_links"`
	ValidResponses []Response         `json:"valid_responses"`
}

// Response is a valid response. Its nonce is what the answer signs.
type Response struct {
	Text     string `json:"text"`
	Nonce    string `json:"nonce"`
	RefMsgID string `json:"ref_msg_id,omitempty"`
}

type Answer struct {
	Type      pltype.MessageType `json:"@type"`
	ID        string             `json:"@id"`
	Signature ResponseSignature  `json:"response.@sig"`
	Thread    *decorator.Thread  `json:"~thread"`
}

type ResponseSignature struct {
	Signature  string `json:"signature"`
	SignedData string `json:"sig_data"`
	Timestamp  string `json:"timestamp"`
}

// NewQuestion returns a question, every response gets a nonce.
func NewQuestion(text string, responses ...string) *Question {
	q := &Question{
		Type:           pltype.New(pltype.Committedanswer, pltype.HandlerQuestion),
		ID:             uuid.New().String(),
		QuestionText:   text,
		ExternalLinks:  []any{},
		ValidResponses: make([]Response, 0, len(responses)),
	}
	for _, r := range responses {
		q.ValidResponses = append(q.ValidResponses, Response{Text: r, Nonce: uuid.New().String()})
	}
	return q
}

// Response returns the valid response with the nonce.
func (q *Question) Response(nonce string) (Response, bool) {
	for _, r := range q.ValidResponses {
		if r.Nonce == nonce {
			return r, true
		}
	}
	return Response{}, false
}

// NewAnswer signs the nonce of the response with the verkey.
func NewAnswer(q *Question, response Response, signer core.Signer, verkey string) (a *Answer, err error) {
	defer err2.Handle(&err, "commit answer")

	if _, ok := q.Response(response.Nonce); !ok {
		return nil, core.Errorf(core.KindInvalidOption, "response %q isn't valid", response.Text)
	}
	sigData := base64.StdEncoding.EncodeToString([]byte(response.Nonce))
	sig := try.To1(signer.Sign(verkey, []byte(sigData)))
	return &Answer{
		Type: pltype.New(pltype.Committedanswer, pltype.HandlerAnswer),
		ID:   uuid.New().String(),
		Signature: ResponseSignature{
			Signature:  base64.StdEncoding.EncodeToString(sig),
			SignedData: sigData,
			Timestamp:  strconv.FormatInt(time.Now().Unix(), 10),
		},
		Thread: &decorator.Thread{ID: q.ID},
	}, nil
}

// Nonce returns the nonce the answer commits to.
func (a *Answer) Nonce() (nonce string, err error) {
	defer err2.Handle(&err, "answer nonce")
	return string(try.To1(decorator.DecodeB64(a.Signature.SignedData))), nil
}

// Verify checks the signature against the verkey of the answerer.
func (a *Answer) Verify(signer core.Signer, verkey string) (err error) {
	defer err2.Handle(&err, "verify committed answer")

	sig := try.To1(decorator.DecodeB64(a.Signature.Signature))
	if ok, _ := signer.Verify(verkey, []byte(a.Signature.SignedData), sig); !ok {
		return core.Errorf(core.KindInvalidVerkey, "committed answer signature doesn't verify")
	}
	return nil
}
