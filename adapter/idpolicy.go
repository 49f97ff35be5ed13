package adapter

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	core "github.com/better-auth/adaptercore"
	"github.com/google/uuid"
)

// IDPolicyKind selects one of the five mutually-exclusive id generation
// strategies described in spec.md §4.4.
type IDPolicyKind uint8

const (
	// IDPolicyDefault generates a 16-24 char URL-safe random token.
	IDPolicyDefault IDPolicyKind = iota
	// IDPolicyNumber defers to the driver's auto-increment column; the
	// factory never generates a value and stringifies the output id.
	IDPolicyNumber
	// IDPolicyDriverGenerated defers to the driver (generateId: false);
	// the core never supplies a value either.
	IDPolicyDriverGenerated
	// IDPolicyUUID generates an RFC-4122 v4 value via google/uuid.
	IDPolicyUUID
	// IDPolicyFunc invokes a user-supplied function per create.
	IDPolicyFunc
)

// IDPolicy configures id generation for a Factory.
type IDPolicy struct {
	Kind IDPolicyKind
	// Func is invoked when Kind is IDPolicyFunc, receiving the logical
	// model name.
	Func func(model string) (string, error)
	// Len sizes the default random token (16-24); 0 selects 24.
	Len int
}

// UseNumberID reports whether this policy is the numeric-id mode that
// drives reference/id coercion throughout transform and where.
func (p IDPolicy) UseNumberID() bool { return p.Kind == IDPolicyNumber }

// generate returns the id to inject for a create call, or ("", nil) when
// the driver is expected to supply its own (IDPolicyNumber or
// IDPolicyDriverGenerated).
func (p IDPolicy) generate(model string) (string, error) {
	switch p.Kind {
	case IDPolicyNumber, IDPolicyDriverGenerated:
		return "", nil
	case IDPolicyUUID:
		return uuid.NewString(), nil
	case IDPolicyFunc:
		if p.Func == nil {
			return "", fmt.Errorf("adapter: IDPolicyFunc requires Func")
		}
		return p.Func(model)
	default:
		n := p.Len
		if n < 16 || n > 24 {
			n = 24
		}
		return randomToken(n)
	}
}

// validate checks the policy against a driver's declared capabilities
// (spec.md §7 CapabilityMismatch, raised at factory init).
func (p IDPolicy) validate(adapterID string, caps Capabilities) error {
	if p.Kind == IDPolicyNumber && !caps.SupportsNumericIDs {
		return &core.CapabilityMismatchError{Adapter: adapterID, Capability: "supportsNumericIds", Required: true}
	}
	return nil
}

// randomToken returns a URL-safe random token of approximately n
// characters, generated from crypto/rand.
func randomToken(n int) (string, error) {
	byteLen := (n*6 + 7) / 8
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("adapter: generating id: %w", err)
	}
	tok := base64.RawURLEncoding.EncodeToString(buf)
	if len(tok) > n {
		tok = tok[:n]
	}
	return tok, nil
}
