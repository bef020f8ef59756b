// Package policy decides which fully-qualified names are relocated under the
// vendor prefix.
package policy

import "strings"

const sep = `\`

// Policy is immutable once built and safe for concurrent use.
type Policy struct {
	// VendorPrefix is the namespace segment injected in front of relocated
	// names.
	VendorPrefix string

	// RootNamespace is never relocated.
	RootNamespace string

	// Membership holds the fully-qualified names (no leading separator)
	// that live in vendored dependencies.
	Membership map[string]bool

	// ForceInclude relocates names starting with any of these prefixes.
	ForceInclude []string

	// ForceExclude keeps names starting with any of these prefixes, even
	// members.
	ForceExclude []string
}

// New builds a policy.
func New(vendorPrefix, rootNamespace string, membership map[string]bool, include, exclude []string) *Policy {
	if membership == nil {
		membership = map[string]bool{}
	}
	return &Policy{
		VendorPrefix:  strings.Trim(vendorPrefix, sep),
		RootNamespace: strings.Trim(rootNamespace, sep),
		Membership:    membership,
		ForceInclude:  include,
		ForceExclude:  exclude,
	}
}

// WithNamespaces returns a copy of p with different prefix lists and the
// same membership set.
func (p *Policy) WithNamespaces(include, exclude []string) *Policy {
	c := *p
	c.ForceInclude = include
	c.ForceExclude = exclude
	return &c
}

// Reserved reports whether name is the root namespace, the vendor prefix
// namespace or lies under either.
func (p *Policy) Reserved(name string) bool {
	name = strings.TrimLeft(name, sep)
	return under(name, p.RootNamespace) || under(name, p.VendorPrefix)
}

// ShouldPrefix reports whether name must be relocated. Reserved names are
// checked first, then force-exclude, membership and force-include.
func (p *Policy) ShouldPrefix(name string) bool {
	name = strings.TrimLeft(name, sep)
	if name == "" || p.Reserved(name) {
		return false
	}
	if hasAnyPrefix(name, p.ForceExclude) {
		return false
	}
	if p.Membership[name] {
		return true
	}
	return hasAnyPrefix(name, p.ForceInclude)
}

// Member reports whether name is relocated by membership alone. Force-include
// prefixes are not consulted; configuration documents only relocate classes
// of the dependencies.
func (p *Policy) Member(name string) bool {
	name = strings.TrimLeft(name, sep)
	if name == "" || p.Reserved(name) || hasAnyPrefix(name, p.ForceExclude) {
		return false
	}
	return p.Membership[name]
}

// Known reports whether name is a member or force-included, ignoring the
// exclusion lists. It is the plausibility test for names found in strings.
func (p *Policy) Known(name string) bool {
	name = strings.TrimLeft(name, sep)
	return name != "" && (p.Membership[name] || hasAnyPrefix(name, p.ForceInclude))
}

// Prefixed returns the relocated absolute form of name.
func (p *Policy) Prefixed(name string) string {
	return sep + p.VendorPrefix + sep + strings.TrimLeft(name, sep)
}

// PrefixNamespace returns the relocated form of a namespace declaration, or
// false when the namespace is reserved.
func (p *Policy) PrefixNamespace(ns string) (string, bool) {
	ns = strings.TrimLeft(ns, sep)
	if ns == "" || p.Reserved(ns) {
		return "", false
	}
	return p.VendorPrefix + sep + ns, true
}

func under(name, ns string) bool {
	if ns == "" {
		return false
	}
	return name == ns || strings.HasPrefix(name, ns+sep)
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(name, strings.TrimLeft(prefix, sep)) {
			return true
		}
	}
	return false
}
