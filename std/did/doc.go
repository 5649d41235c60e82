// Package did is the minimal DID document model of the pairwise connection.
// It knows where the other end is reachable (service endpoint) and with which
// keys (recipient and routing keys).
package did

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/mr-tron/base58"
)

const (
	Context               = "https://w3id.org/did/v1"
	KeyType               = "Ed25519VerificationKey2018"
	KeyAuthenticationType = "Ed25519SignatureAuthentication2018"
	ServiceType           = "IndyAgent"
	OutOfBandServiceType  = "did-communication"
	DefaultServiceID      = "did:example:123456789abcdefghi;indy"

	verkeyLen = 32
)

// Doc DID Document definition
type Doc struct {
	Context        string               `json:"@context"`
	ID             string               `json:"id"`
	PublicKey      []PublicKey          `json:"publicKey"`
	Authentication []VerificationMethod `json:"authentication"`
	Service        []Service            `json:"service"`
}

// PublicKey DID doc public key
type PublicKey struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Controller      string `json:"controller"`
	PublicKeyBase58 string `json:"publicKeyBase58"`
}

// Service DID doc service
type Service struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Priority        uint     `json:"priority"`
	RecipientKeys   []string `json:"recipientKeys"`
	RoutingKeys     []string `json:"routingKeys"`
	ServiceEndpoint string   `json:"serviceEndpoint"`
}

// VerificationMethod authentication verification method
type VerificationMethod struct {
	Type      string `json:"type"`
	PublicKey string `json:"publicKey"`
}

// NewService returns the default IndyAgent service.
func NewService() Service {
	return Service{
		ID:            DefaultServiceID,
		Type:          ServiceType,
		RecipientKeys: []string{},
		RoutingKeys:   []string{},
	}
}

// NewDefault returns a DID document with the default context and one empty
// service.
func NewDefault() *Doc {
	return &Doc{
		Context:        Context,
		PublicKey:      []PublicKey{},
		Authentication: []VerificationMethod{},
		Service:        []Service{NewService()},
	}
}

// NewDocFromService builds a DID document from a single service entry.
func NewDocFromService(s Service) *Doc {
	d := NewDefault()
	d.SetServiceEndpoint(s.ServiceEndpoint)
	d.SetKeys(s.RecipientKeys, s.RoutingKeys)
	return d
}

// NewDocWith returns a DID document of the DID with the endpoint and keys
// set through SetKeys.
func NewDocWith(id, endpoint string, recipientKeys, routingKeys []string) *Doc {
	d := NewDefault()
	d.SetID(id)
	d.SetServiceEndpoint(endpoint)
	d.SetKeys(recipientKeys, routingKeys)
	return d
}

func (d *Doc) SetID(id string) {
	d.ID = id
}

// SetServiceEndpoint sets the endpoint of the first service.
func (d *Doc) SetServiceEndpoint(endpoint string) {
	if len(d.Service) > 0 {
		d.Service[0].ServiceEndpoint = endpoint
	}
}

// SetKeys adds the recipient keys as public keys with synthetic ids
// {did}#{n}, each referenced from an authentication entry, and pushes them
// to the first service with the routing keys.
func (d *Doc) SetKeys(recipientKeys, routingKeys []string) {
	for i, key := range recipientKeys {
		ref := buildKeyReference(d.ID, i+1)
		d.PublicKey = append(d.PublicKey, PublicKey{
			ID:              ref,
			Type:            KeyType,
			Controller:      d.ID,
			PublicKeyBase58: key,
		})
		d.Authentication = append(d.Authentication, VerificationMethod{
			Type:      KeyAuthenticationType,
			PublicKey: ref,
		})
		if len(d.Service) > 0 {
			d.Service[0].RecipientKeys = append(d.Service[0].RecipientKeys, key)
		}
	}
	if len(d.Service) == 0 {
		return
	}
	// routing keys are stored raw for interop with agents which don't
	// resolve key references
	d.Service[0].RoutingKeys = append(d.Service[0].RoutingKeys, routingKeys...)
}

// SetRecipientKeys replaces the recipient keys of the first service.
func (d *Doc) SetRecipientKeys(keys []string) {
	if len(d.Service) > 0 {
		d.Service[0].RecipientKeys = append([]string{}, keys...)
	}
}

// SetRoutingKeys replaces the routing keys of the first service.
func (d *Doc) SetRoutingKeys(keys []string) {
	if len(d.Service) > 0 {
		d.Service[0].RoutingKeys = append([]string{}, keys...)
	}
}

// NormalizeServiceKeys converts did:key formatted keys of the services to
// base58 verkeys. Keys which cannot be converted are left as is and Validate
// reports them.
func (d *Doc) NormalizeServiceKeys() {
	for i := range d.Service {
		d.Service[i].RecipientKeys = normalizeKeys(d.Service[i].RecipientKeys)
		d.Service[i].RoutingKeys = normalizeKeys(d.Service[i].RoutingKeys)
	}
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if IsDIDKey(key) {
			if vk, err := VerkeyFromDIDKey(key); err == nil {
				key = vk
			}
		}
		out = append(out, key)
	}
	return out
}

// Validate checks the document. The error is core.ErrInvalidDIDDoc and it
// names the offending field.
func (d *Doc) Validate() error {
	if d.Context != Context {
		return core.Errorf(core.KindInvalidDIDDoc,
			"unsupported @context value: %q", d.Context)
	}
	for _, s := range d.Service {
		if err := validateEndpoint(s.ServiceEndpoint); err != nil {
			return err
		}
		for _, key := range s.RecipientKeys {
			if err := d.validateRecipientKey(key); err != nil {
				return err
			}
		}
		for _, key := range s.RoutingKeys {
			if err := d.validateRoutingKey(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" {
		return core.Errorf(core.KindInvalidDIDDoc,
			"invalid serviceEndpoint %q", endpoint)
	}
	return nil
}

func (d *Doc) validateRecipientKey(key string) error {
	pk, err := d.validatePublicKey(key)
	if err != nil {
		return err
	}
	return d.validateAuthentication(pk.ID)
}

func (d *Doc) validateRoutingKey(key string) error {
	if len(strings.Split(key, "#")) == 2 {
		_, err := d.validatePublicKey(key)
		return err
	}
	return ValidateVerkey(key)
}

func (d *Doc) validatePublicKey(target string) (*PublicKey, error) {
	pk := d.findPublicKey(target)
	if pk == nil {
		return nil, core.Errorf(core.KindInvalidDIDDoc,
			"publicKey: cannot find definition for key %q", parseKeyReference(target))
	}
	if pk.Type != KeyType {
		return nil, core.Errorf(core.KindInvalidDIDDoc,
			"publicKey: unsupported type %q", pk.Type)
	}
	if err := ValidateVerkey(pk.PublicKeyBase58); err != nil {
		return nil, core.Errorf(core.KindInvalidDIDDoc,
			"publicKey: %s", err)
	}
	return pk, nil
}

func (d *Doc) validateAuthentication(target string) error {
	if len(d.Authentication) == 0 {
		return nil
	}
	for _, a := range d.Authentication {
		if a.PublicKey != target && parseKeyReference(a.PublicKey) != target {
			continue
		}
		if a.Type != KeyAuthenticationType && a.Type != KeyType {
			return core.Errorf(core.KindInvalidDIDDoc,
				"authentication: unsupported type %q", a.Type)
		}
		return nil
	}
	return core.Errorf(core.KindInvalidDIDDoc,
		"authentication: cannot find section for key %q", target)
}

func (d *Doc) findPublicKey(ref string) *PublicKey {
	id := parseKeyReference(ref)
	for i := range d.PublicKey {
		pk := &d.PublicKey[i]
		if pk.ID == id || pk.PublicKeyBase58 == id || pk.ID == ref {
			return pk
		}
	}
	return nil
}

// KeyForReference dereferences a key reference like did#1 to the verkey.
// Both the legacy format, where the verkey is the key id, and the synthetic
// fragment format are understood. An unresolvable reference is returned
// as a literal key.
func (d *Doc) KeyForReference(ref string) string {
	if pk := d.findPublicKey(ref); pk != nil {
		return pk.PublicKeyBase58
	}
	return parseKeyReference(ref)
}

// ResolveKeys returns the literal recipient and routing keys of the first
// service.
func (d *Doc) ResolveKeys() (recipientKeys, routingKeys []string) {
	if len(d.Service) == 0 {
		return []string{}, []string{}
	}
	s := d.Service[0]
	recipientKeys = make([]string, 0, len(s.RecipientKeys))
	for _, key := range s.RecipientKeys {
		recipientKeys = append(recipientKeys, d.KeyForReference(key))
	}
	routingKeys = make([]string, 0, len(s.RoutingKeys))
	for _, key := range s.RoutingKeys {
		routingKeys = append(routingKeys, d.KeyForReference(key))
	}
	return recipientKeys, routingKeys
}

func (d *Doc) RecipientKeys() []string {
	keys, _ := d.ResolveKeys()
	return keys
}

func (d *Doc) RoutingKeys() []string {
	_, keys := d.ResolveKeys()
	return keys
}

// ServiceEndpoint returns the endpoint of the first service or empty.
func (d *Doc) ServiceEndpoint() string {
	if len(d.Service) == 0 {
		return ""
	}
	return d.Service[0].ServiceEndpoint
}

// Clone returns a deep copy of the document.
func (d *Doc) Clone() *Doc {
	if d == nil {
		return nil
	}
	c := *d
	c.PublicKey = append([]PublicKey{}, d.PublicKey...)
	c.Authentication = append([]VerificationMethod{}, d.Authentication...)
	c.Service = make([]Service, len(d.Service))
	for i, s := range d.Service {
		s.RecipientKeys = append([]string{}, s.RecipientKeys...)
		s.RoutingKeys = append([]string{}, s.RoutingKeys...)
		c.Service[i] = s
	}
	return &c
}

// UnmarshalJSON reads publicKey also from the newer verificationMethod
// field.
func (d *Doc) UnmarshalJSON(data []byte) error {
	type plain Doc
	var aux struct {
		plain
		VerificationMethod []PublicKey `json:"verificationMethod"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Doc(aux.plain)
	if len(d.PublicKey) == 0 && len(aux.VerificationMethod) > 0 {
		d.PublicKey = aux.VerificationMethod
	}
	if d.PublicKey == nil {
		d.PublicKey = []PublicKey{}
	}
	if d.Authentication == nil {
		d.Authentication = []VerificationMethod{}
	}
	for i := range d.Service {
		if d.Service[i].RecipientKeys == nil {
			d.Service[i].RecipientKeys = []string{}
		}
		if d.Service[i].RoutingKeys == nil {
			d.Service[i].RoutingKeys = []string{}
		}
	}
	return nil
}

// ValidateVerkey checks that the key is a base58 encoded 32 byte key. The
// abbreviated ~verkey format is accepted as well.
func ValidateVerkey(key string) error {
	k := strings.TrimPrefix(key, "~")
	bytes, err := base58.Decode(k)
	if err != nil {
		return core.Errorf(core.KindInvalidVerkey, "invalid base58 in %q", key)
	}
	if strings.HasPrefix(key, "~") {
		if len(bytes) != verkeyLen/2 {
			return core.Errorf(core.KindInvalidVerkey, "invalid abbreviated verkey length %d", len(bytes))
		}
		return nil
	}
	if len(bytes) != verkeyLen {
		return core.Errorf(core.KindInvalidVerkey, "invalid verkey length %d", len(bytes))
	}
	return nil
}

func buildKeyReference(did string, n int) string {
	return fmt.Sprintf("%s#%d", did, n)
}

func parseKeyReference(ref string) string {
	parts := strings.Split(ref, "#")
	if len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}
