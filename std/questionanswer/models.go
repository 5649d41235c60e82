// Package questionanswer is the questionanswer/1.0 protocol model.
package questionanswer

import (
	"encoding/base64"
	"time"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Question is a question with a fixed set of valid responses.
type Question struct {
	Type              pltype.MessageType `json:"@type"`
	ID                string             `json:"@id"`
	QuestionText      string             `json:"question_text"`
	QuestionDetail    string             `json:"question_detail,omitempty"`
	Nonce             string             `json:"nonce"`
	SignatureRequired bool               `json:"signature_required"`
	ValidResponses    []Response         `json:"valid_responses"`
	Timing            *decorator.Timing  `json:"~timing,omitempty"`
	Thread            *decorator.Thread  `json:"~thread,omitempty"`
}

// Response is one of the valid responses of the question.
type Response struct {
	Text string `json:"text"`
}

// Answer is the response to the question in its thread.
type Answer struct {
	Type      pltype.MessageType `json:"@type"`
	ID        string             `json:"@id"`
	Response  string             `json:"response"`
	Signature *Signature         `json:"response~sig,omitempty"`
	Timing    *decorator.Timing  `json:"~timing,omitempty"`
	Thread    *decorator.Thread  `json:"~thread"`
}

// Signature is the signature decorator over question text, response and
// nonce.
type Signature struct {
	Type       pltype.MessageType `json:"@type"`
	Signature  string             `json:"signature"`
	SignedData string             `json:"sig_data"`
	Signer     string             `json:"signer"`
}

// NewQuestion returns a question with a fresh nonce.
func NewQuestion(text string, responses ...string) *Question {
	q := &Question{
		Type:           pltype.New(pltype.QuestionAnswer, pltype.HandlerQuestion),
		ID:             uuid.New().String(),
		QuestionText:   text,
		Nonce:          uuid.New().String(),
		ValidResponses: make([]Response, 0, len(responses)),
	}
	for _, r := range responses {
		q.ValidResponses = append(q.ValidResponses, Response{Text: r})
	}
	return q
}

// IsValid tells if the text is one of the valid responses.
func (q *Question) IsValid(text string) bool {
	for _, r := range q.ValidResponses {
		if r.Text == text {
			return true
		}
	}
	return false
}

// ThreadID returns thid of the question.
func (q *Question) ThreadID() string {
	return q.Thread.ThreadID(q.ID)
}

// NewAnswer builds the answer to the question. The response must be one of
// the valid ones. When the question requires a signature, it's made with
// the verkey.
func NewAnswer(q *Question, response Response, signer core.Signer, verkey string) (a *Answer, err error) {
	defer err2.Handle(&err, "answer question")

	if !q.IsValid(response.Text) {
		return nil, core.Errorf(core.KindInvalidOption, "%q isn't a valid response", response.Text)
	}
	a = &Answer{
		Type:     pltype.New(pltype.QuestionAnswer, pltype.HandlerAnswer),
		ID:       uuid.New().String(),
		Response: response.Text,
		Timing:   &decorator.Timing{OutTime: decorator.Timestamp(time.Now())},
		Thread:   &decorator.Thread{ID: q.ThreadID()},
	}
	if q.SignatureRequired {
		data := []byte(q.QuestionText + response.Text + q.Nonce)
		sig := try.To1(signer.Sign(verkey, data))
		a.Signature = &Signature{
			Type:       pltype.New(pltype.Signature, pltype.HandlerEd25519Single),
			Signature:  base64.URLEncoding.EncodeToString(sig),
			SignedData: base64.URLEncoding.EncodeToString(data),
			Signer:     verkey,
		}
	}
	return a, nil
}

// Verify checks the answer's signature when there is one.
func (a *Answer) Verify(signer core.Signer) (err error) {
	defer err2.Handle(&err, "verify answer")

	if a.Signature == nil {
		return nil
	}
	data := try.To1(decorator.DecodeB64(a.Signature.SignedData))
	sig := try.To1(decorator.DecodeB64(a.Signature.Signature))
	if ok, _ := signer.Verify(a.Signature.Signer, data, sig); !ok {
		return core.Errorf(core.KindInvalidVerkey, "answer signature doesn't verify")
	}
	return nil
}
