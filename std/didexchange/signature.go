package didexchange

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const connectionSigExpTime = 10 * 60 * 60

const timestampLen = 8

// Sign signs the response's connection with the verkey and sets the
// connection signature. The signed data is an 8 byte big endian unix
// timestamp followed by the connection JSON.
func (r *Response) Sign(signer core.Signer, verkey string) (err error) {
	defer err2.Handle(&err, "sign connection")

	r.ConnectionSignature = try.To1(newConnectionSignature(r.Connection, signer, verkey))
	return nil
}

// Verify checks the connection signature against the key, e.g. the
// invitation's recipient key, and sets the Connection from the signed data.
// If key is empty, the signer of the signature is trusted as is.
func (r *Response) Verify(signer core.Signer, key string) (err error) {
	defer err2.Handle(&err, "verify response")

	if r.ConnectionSignature == nil {
		return core.Errorf(core.KindInvalidJSON, "connection~sig missing")
	}
	if key != "" && r.ConnectionSignature.SignVerKey != key {
		return core.Errorf(core.KindInvalidVerkey,
			"signer %s isn't the invitation's recipient key", r.ConnectionSignature.SignVerKey)
	}
	r.Connection = try.To1(verifySignature(r.ConnectionSignature, signer))
	r.Connection.DID = strings.TrimPrefix(r.Connection.DID, "did:sov:")
	return nil
}

func newConnectionSignature(connection *Connection, signer core.Signer, verkey string) (cs *ConnectionSignature, err error) {
	defer err2.Handle(&err, "build connection sign")

	connectionJSON := try.To1(json.Marshal(connection))
	signedData := make([]byte, timestampLen, timestampLen+len(connectionJSON))
	binary.BigEndian.PutUint64(signedData, uint64(time.Now().Unix()))
	signedData = append(signedData, connectionJSON...)

	signature := try.To1(signer.Sign(verkey, signedData))

	return &ConnectionSignature{
		Type:       pltype.New(pltype.Signature, pltype.HandlerEd25519Single),
		SignedData: base64.URLEncoding.EncodeToString(signedData),
		SignVerKey: verkey,
		Signature:  base64.URLEncoding.EncodeToString(signature),
	}, nil
}

// verifySignature verifies the signature with the signer key of the
// structure. If succeeded it returns the signed Connection.
func verifySignature(cs *ConnectionSignature, signer core.Signer) (c *Connection, err error) {
	defer err2.Handle(&err, "verify sign")

	data := try.To1(decorator.DecodeB64(cs.SignedData))
	if len(data) <= timestampLen {
		glog.Errorln("missing or invalid signature data")
		return nil, core.Errorf(core.KindInvalidJSON, "missing or invalid signature data")
	}

	signature := try.To1(decorator.DecodeB64(cs.Signature))

	ok, _ := signer.Verify(cs.SignVerKey, data, signature)
	if !ok {
		glog.Errorln("cannot verify signature")
		return nil, core.Errorf(core.KindInvalidVerkey, "cannot verify connection signature")
	}

	timestamp := int64(binary.BigEndian.Uint64(data))
	now := time.Now().Unix()
	diff := now - timestamp
	if diff < 0 || diff > connectionSigExpTime {
		glog.Warningf("signature timestamp %s is invalid for big endian encoding, try little endian",
			time.Unix(timestamp, 0))
		timestamp = int64(binary.LittleEndian.Uint64(data))
		diff = now - timestamp
	}
	if diff < 0 || diff > connectionSigExpTime {
		glog.Errorln("connection signature timestamp is invalid: ", timestamp)
		return nil, core.Errorf(core.KindInvalidJSON, "connection signature expired")
	}

	glog.V(3).Infoln("verified connection signature w/ ts:", time.Unix(timestamp, 0))

	var connection Connection
	dto.FromJSON(data[timestampLen:], &connection)
	if connection.DIDDoc == nil {
		return nil, core.Errorf(core.KindInvalidDIDDoc, "signed connection has no DIDDoc")
	}
	return &connection, nil
}
