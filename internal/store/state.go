// Package store holds the authoritative copy of every appliance collection
// and applies operation outcomes to it.
//
// State values are immutable once published: Reduce returns a new State and
// never writes to a slice that an earlier State references, so a snapshot
// handed to a reader stays valid however many actions are applied afterwards.
package store

import "grimm.is/rampart/internal/model"

// Collection is the uniform shape of every id-keyed resource collection.
type Collection[T any] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
}

// Find returns the record with the given id.
func Find[T model.Record[T]](c Collection[T], id string) (T, bool) {
	if i := indexOf(c.Items, id); i >= 0 {
		return c.Items[i], true
	}
	var zero T
	return zero, false
}

// SystemState holds the system-info singleton and the update list.
type SystemState struct {
	Info    *model.SystemInfo `json:"info"`
	Updates []model.Update    `json:"updates"`
	Loading bool              `json:"loading"`
	Error   string            `json:"error"`
}

// SessionState is the placeholder login state.
type SessionState struct {
	User          *model.Principal `json:"user"`
	Authenticated bool             `json:"isAuthenticated"`
	Loading       bool             `json:"loading"`
	Error         string           `json:"error"`
}

// State is one immutable snapshot of every collection.
type State struct {
	Firewall Collection[model.FirewallRule]     `json:"firewall"`
	VPN      Collection[model.VPNTunnel]        `json:"vpn"`
	Network  Collection[model.NetworkInterface] `json:"network"`
	System   SystemState                        `json:"system"`
	Users    Collection[model.UserAccount]      `json:"users"`
	Session  SessionState                       `json:"session"`
}

// Initial returns the empty state: no records, nothing loading, no errors.
func Initial() State {
	return State{
		Firewall: Collection[model.FirewallRule]{Items: []model.FirewallRule{}},
		VPN:      Collection[model.VPNTunnel]{Items: []model.VPNTunnel{}},
		Network:  Collection[model.NetworkInterface]{Items: []model.NetworkInterface{}},
		System:   SystemState{Updates: []model.Update{}},
		Users:    Collection[model.UserAccount]{Items: []model.UserAccount{}},
	}
}

// Of returns the collection of record type T.
func Of[T model.Record[T]](s State) Collection[T] {
	return *slot[T](&s)
}

func slot[T model.Record[T]](s *State) *Collection[T] {
	var zero T
	switch zero.Kind() {
	case model.KindFirewall:
		return any(&s.Firewall).(*Collection[T])
	case model.KindVPN:
		return any(&s.VPN).(*Collection[T])
	case model.KindNetwork:
		return any(&s.Network).(*Collection[T])
	case model.KindUsers:
		return any(&s.Users).(*Collection[T])
	}
	panic("store: no collection for " + string(zero.Kind()))
}

// Sizes reports the number of records per collection.
func (s State) Sizes() map[string]int {
	return map[string]int{
		string(model.KindFirewall): len(s.Firewall.Items),
		string(model.KindVPN):      len(s.VPN.Items),
		string(model.KindNetwork):  len(s.Network.Items),
		string(model.KindSystem):   len(s.System.Updates),
		string(model.KindUsers):    len(s.Users.Items),
	}
}

// Part returns the sub-state of one collection, for JSON rendering.
func (s State) Part(kind model.Kind) (any, bool) {
	switch kind {
	case model.KindFirewall:
		return s.Firewall, true
	case model.KindVPN:
		return s.VPN, true
	case model.KindNetwork:
		return s.Network, true
	case model.KindSystem:
		return s.System, true
	case model.KindUsers:
		return s.Users, true
	case model.KindSession:
		return s.Session, true
	}
	return nil, false
}
