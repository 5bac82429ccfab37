// Package model defines the typed records held by the rampart store.
//
// Every record kind is a plain value type. Records are immutable by
// replacement: the store never mutates a record in place, it swaps in a
// patched copy produced by WithID or WithEnabled.
package model

import "fmt"

// Kind names one resource collection.
type Kind string

const (
	KindFirewall Kind = "firewall"
	KindVPN      Kind = "vpn"
	KindNetwork  Kind = "network"
	KindSystem   Kind = "system"
	KindUsers    Kind = "users"
	KindSession  Kind = "session"
)

// Kinds lists every collection in display order.
var Kinds = []Kind{KindFirewall, KindVPN, KindNetwork, KindSystem, KindUsers, KindSession}

// ParseKind resolves a collection name such as "firewall" or "users".
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Label is the human name of the records a collection holds.
func (k Kind) Label() string {
	switch k {
	case KindFirewall:
		return "firewall rules"
	case KindVPN:
		return "VPN tunnels"
	case KindNetwork:
		return "network interfaces"
	case KindSystem:
		return "system information"
	case KindUsers:
		return "users"
	case KindSession:
		return "session"
	}
	return string(k)
}

// Record is the constraint satisfied by every id-keyed record kind.
// T is the record type itself so that the patch helpers return concrete values.
type Record[T any] interface {
	Kind() Kind
	RecordID() string
	WithID(id string) T
	WithEnabled(enabled bool) T
	Validate() error
}
