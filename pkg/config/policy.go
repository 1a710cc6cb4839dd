package config

import (
	"encoding/json"
	"fmt"
)

// UpdatePolicy controls whether an update request re-fetches a dependency.
// The zero value is OnChange.
type UpdatePolicy int

const (
	// OnChange overwrites the target only when the fetched content differs.
	OnChange UpdatePolicy = iota
	// Always overwrites the target on every update.
	Always
	// Never turns update requests into no-ops.
	Never
)

const (
	tokenAlways   = "always"
	tokenNever    = "never"
	tokenOnChange = "on_change"
)

// PolicyTokens lists the serialized policy tokens in display order.
var PolicyTokens = []string{tokenAlways, tokenNever, tokenOnChange}

// ParsePolicy maps a token to its policy. Unrecognized tokens, including the
// empty string, yield OnChange.
func ParsePolicy(s string) UpdatePolicy {
	switch s {
	case tokenAlways:
		return Always
	case tokenNever:
		return Never
	default:
		return OnChange
	}
}

func (p UpdatePolicy) String() string {
	switch p {
	case Always:
		return tokenAlways
	case Never:
		return tokenNever
	default:
		return tokenOnChange
	}
}

func (p UpdatePolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON never fails: anything that is not a known token string
// (numbers, null, garbage) decodes to OnChange.
func (p *UpdatePolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = OnChange
		return nil
	}
	*p = ParsePolicy(s)
	return nil
}

// policyFlag adapts UpdatePolicy to pflag.Value for the --update flag.
type policyFlag struct {
	p *UpdatePolicy
}

// NewPolicyFlag returns a pflag.Value that writes into p.
func NewPolicyFlag(p *UpdatePolicy) *policyFlag {
	return &policyFlag{p: p}
}

func (f *policyFlag) String() string {
	if f.p == nil {
		return tokenOnChange
	}
	return f.p.String()
}

func (f *policyFlag) Set(s string) error {
	*f.p = ParsePolicy(s)
	return nil
}

func (f *policyFlag) Type() string {
	return fmt.Sprintf("%s|%s|%s", tokenAlways, tokenNever, tokenOnChange)
}
