package dist

import "fmt"

// unsupportedFlags mirrors pkg/exporttrie's REEXPORT/STUB_AND_RESOLVER
// restriction: a FlagPolicy never has to be configured correctly by a
// caller to reject them, since the trie codec would reject them anyway,
// but rejecting at announcement time avoids pulling chunks that can only
// be thrown away after the fact.
const unsupportedFlags = 0x08 | 0x10

// FlagPolicy controls which export flag bits are allowed from a peer.
// AllowedFlags is only consulted by a policy built with
// NewRestrictedPolicy; a permissive policy allows anything other than the
// unconditionally unsupported bits and any explicitly denied ones.
type FlagPolicy struct {
	AllowedFlags uint64
	restricted   bool
	deniedFlags  uint64
}

// NewPermissivePolicy creates a policy that allows every flag bit except
// the ones pkg/exporttrie can never round-trip.
func NewPermissivePolicy() *FlagPolicy {
	return &FlagPolicy{}
}

// NewRestrictedPolicy creates a policy that only allows the bits set in
// allowed, in addition to still denying the unconditionally unsupported
// bits.
func NewRestrictedPolicy(allowed uint64) *FlagPolicy {
	return &FlagPolicy{AllowedFlags: allowed, restricted: true}
}

// Deny adds bits to this policy's explicit deny mask.
func (p *FlagPolicy) Deny(flags uint64) {
	p.deniedFlags |= flags
}

// Check verifies that a manifest's union of flags is allowed by this
// policy. It always rejects the unsupported bits regardless of
// configuration.
func (p *FlagPolicy) Check(manifest *FlagManifest) error {
	if manifest == nil {
		return nil
	}
	flags := manifest.UnionFlags
	if flags&unsupportedFlags != 0 {
		return fmt.Errorf("dist: flags %#x include unsupported reexport/stub-and-resolver bits", flags)
	}
	if flags&p.deniedFlags != 0 {
		return fmt.Errorf("dist: flags %#x include explicitly denied bits %#x", flags, flags&p.deniedFlags)
	}
	if p.restricted && flags&^p.AllowedFlags != 0 {
		return fmt.Errorf("dist: flags %#x include bits outside the allowed set %#x", flags, p.AllowedFlags)
	}
	return nil
}
