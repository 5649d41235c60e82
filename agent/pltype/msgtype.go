package pltype

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/findy-network/findy-didexchange/core"
)

// Prefix is the namespace part of the message type.
type Prefix int

const (
	PrefixDID Prefix = iota
	PrefixEndpoint
)

func (p Prefix) String() string {
	if p == PrefixEndpoint {
		return DIDOrgAries
	}
	return Aries
}

// Version is the protocol version of the message type. Only the versions
// of the canonical table are kept, anything else is read as 1.0.
type Version string

const (
	V09 Version = "0.9"
	V10 Version = "1.0"
	V11 Version = "1.1"
)

// ParseVersion maps the wire string to a known version.
func ParseVersion(s string) Version {
	switch Version(s) {
	case V09, V10, V11:
		return Version(s)
	default:
		return V10
	}
}

// Family is the protocol family of the message. Unknown families keep the
// string they were parsed from.
type Family string

const (
	Routing            Family = ProtocolRouting
	Connections        Family = ProtocolConnection
	Notification       Family = ProtocolNotification
	Signature          Family = ProtocolSignature
	CredentialIssuance Family = ProtocolIssueCredential
	ReportProblem      Family = ProtocolReportProblem
	PresentProof       Family = ProtocolPresentProof
	TrustPing          Family = ProtocolTrustPing
	DiscoveryFeatures  Family = ProtocolDiscoveryFeatures
	Basicmessage       Family = ProtocolBasicMessage
	Outofband          Family = ProtocolOutOfBand
	QuestionAnswer     Family = ProtocolQuestionAnswer
	Committedanswer    Family = ProtocolCommittedAnswer
	InviteAction       Family = ProtocolInviteAction
)

var familyVersions = map[Family]Version{
	Routing:            V10,
	Connections:        V10,
	Notification:       V10,
	Signature:          V10,
	CredentialIssuance: V10,
	ReportProblem:      V10,
	PresentProof:       V10,
	TrustPing:          V10,
	DiscoveryFeatures:  V10,
	Basicmessage:       V10,
	Outofband:          V10,
	QuestionAnswer:     V10,
	Committedanswer:    V10,
	InviteAction:       V09,
}

// Known tells if the family is one of the supported protocol families.
func (f Family) Known() bool {
	_, ok := familyVersions[f]
	return ok
}

// Version returns the canonical version of the family. Unknown families
// are 1.0.
func (f Family) Version() Version {
	if v, ok := familyVersions[f]; ok {
		return v
	}
	return V10
}

// Families returns all of the known families.
func Families() []Family {
	fs := make([]Family, 0, len(familyVersions))
	for f := range familyVersions {
		fs = append(fs, f)
	}
	return fs
}

// MessageType is the parsed form of the `@type` field.
type MessageType struct {
	Prefix  Prefix
	Family  Family
	Version Version
	Type    string
}

var typeRegexp = regexp.MustCompile(`(did:\w+:\w+;spec|https://didcomm.org)/(.*)/(.*)/(.*)`)

// New returns a message type of the family with the canonical version and
// the legacy DID prefix.
func New(family Family, msgType string) MessageType {
	return MessageType{
		Prefix:  PrefixDID,
		Family:  family,
		Version: family.Version(),
		Type:    msgType,
	}
}

// NewEndpoint is like New but uses the didcomm.org prefix.
func NewEndpoint(family Family, msgType string) MessageType {
	mt := New(family, msgType)
	mt.Prefix = PrefixEndpoint
	return mt
}

// WithVersion returns a copy of the type with the version.
func (mt MessageType) WithVersion(v Version) MessageType {
	mt.Version = v
	return mt
}

// Parse parses the wire format of the message type.
func Parse(s string) (mt MessageType, err error) {
	match := typeRegexp.FindStringSubmatch(s)
	if match == nil {
		return mt, core.Errorf(core.KindInvalidJSON, "cannot parse message type %q", s)
	}
	prefix := PrefixDID
	if match[1] == DIDOrgAries {
		prefix = PrefixEndpoint
	}
	return MessageType{
		Prefix:  prefix,
		Family:  Family(match[2]),
		Version: ParseVersion(match[3]),
		Type:    match[4],
	}, nil
}

// MustParse is for constants and tests.
func MustParse(s string) MessageType {
	mt, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return mt
}

func (mt MessageType) String() string {
	v := mt.Version
	if v == "" {
		v = mt.Family.Version()
	}
	return fmt.Sprintf("%s/%s/%s/%s", mt.Prefix, mt.Family, v, mt.Type)
}

// Is compares family and bare type, ignoring prefix and version.
func (mt MessageType) Is(family Family, msgType string) bool {
	return mt.Family == family && mt.Type == msgType
}

func (mt MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(mt.String())
}

func (mt *MessageType) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err = json.Unmarshal(data, &s); err != nil {
		return err
	}
	*mt, err = Parse(s)
	return err
}
