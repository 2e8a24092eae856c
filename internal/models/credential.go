// Package models defines the credential types shared by the store, the
// workflows and the control API.
package models

import "sort"

// Unbound is the identity a matched digest resolves to when it has no
// binding record.
const Unbound IdentityNumber = 0

// IdentityNumber is the operator-chosen number a digest is bound to.
type IdentityNumber int

// CredentialSet is the logical content of the credential log. Duplicate
// records collapse into one member.
type CredentialSet map[string]struct{}

// NewCredentialSet builds a set from the given digests.
func NewCredentialSet(hashes ...string) CredentialSet {
	s := make(CredentialSet, len(hashes))
	for _, h := range hashes {
		s.Add(h)
	}
	return s
}

func (s CredentialSet) Add(hash string) {
	s[hash] = struct{}{}
}

func (s CredentialSet) Contains(hash string) bool {
	_, ok := s[hash]
	return ok
}

// Sorted returns the members in lexical order.
func (s CredentialSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// BindingTable maps a digest to its identity. Built by replaying the
// binding log in order, so a later record for a digest overrides earlier ones.
type BindingTable map[string]IdentityNumber

// Set records a binding, replacing any previous one for hash.
func (b BindingTable) Set(hash string, id IdentityNumber) {
	b[hash] = id
}

// Resolve returns the identity bound to hash, or Unbound with ok=false.
func (b BindingTable) Resolve(hash string) (IdentityNumber, bool) {
	id, ok := b[hash]
	if !ok {
		return Unbound, false
	}
	return id, true
}

// Binding is a single record of the binding log.
type Binding struct {
	Hash     string
	Identity IdentityNumber
}
