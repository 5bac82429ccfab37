package model

import (
	"errors"
	"net/netip"
	"strconv"
	"strings"
)

// RuleAction is what a firewall rule does with matching traffic.
type RuleAction string

const (
	ActionAllow  RuleAction = "allow"
	ActionBlock  RuleAction = "block"
	ActionReject RuleAction = "reject"
)

// RuleActions lists every valid RuleAction.
var RuleActions = []RuleAction{ActionAllow, ActionBlock, ActionReject}

func (a RuleAction) Valid() bool {
	switch a {
	case ActionAllow, ActionBlock, ActionReject:
		return true
	}
	return false
}

func (a *RuleAction) UnmarshalText(b []byte) error {
	v, err := parseEnum("action", b, RuleActions)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Protocol is the L4 protocol a rule matches.
type Protocol string

const (
	ProtocolAny  Protocol = "any"
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
)

// Protocols lists every valid Protocol.
var Protocols = []Protocol{ProtocolAny, ProtocolTCP, ProtocolUDP, ProtocolICMP}

func (p Protocol) Valid() bool {
	switch p {
	case ProtocolAny, ProtocolTCP, ProtocolUDP, ProtocolICMP:
		return true
	}
	return false
}

func (p *Protocol) UnmarshalText(b []byte) error {
	v, err := parseEnum("protocol", b, Protocols)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// HasPorts reports whether port matching makes sense for p.
func (p Protocol) HasPorts() bool {
	switch p {
	case ProtocolTCP, ProtocolUDP:
		return true
	case ProtocolAny, ProtocolICMP:
		return false
	}
	return false
}

// Any is the wildcard accepted by address and port fields.
const Any = "any"

// FirewallRule is one filter rule.
type FirewallRule struct {
	ID              string     `json:"id" yaml:"id"`
	Action          RuleAction `json:"action" yaml:"action"`
	Protocol        Protocol   `json:"protocol" yaml:"protocol"`
	Source          string     `json:"source" yaml:"source"`
	Destination     string     `json:"destination" yaml:"destination"`
	SourcePort      string     `json:"sourcePort" yaml:"sourcePort"`
	DestinationPort string     `json:"destinationPort" yaml:"destinationPort"`
	Description     string     `json:"description" yaml:"description"`
	Enabled         bool       `json:"enabled" yaml:"enabled"`
}

func (r FirewallRule) Kind() Kind       { return KindFirewall }
func (r FirewallRule) RecordID() string { return r.ID }

func (r FirewallRule) WithID(id string) FirewallRule {
	r.ID = id
	return r
}

func (r FirewallRule) WithEnabled(enabled bool) FirewallRule {
	r.Enabled = enabled
	return r
}

// Validate checks enumerations, endpoints and ports.
// Ports other than "any" are only meaningful for tcp and udp.
func (r FirewallRule) Validate() error {
	var errs []error
	if err := checkEnum("action", r.Action, RuleActions); err != nil {
		errs = append(errs, err)
	}
	if err := checkEnum("protocol", r.Protocol, Protocols); err != nil {
		errs = append(errs, err)
	}
	if err := validateEndpoint("source", r.Source); err != nil {
		errs = append(errs, err)
	}
	if err := validateEndpoint("destination", r.Destination); err != nil {
		errs = append(errs, err)
	}
	ports := [...]struct{ field, value string }{
		{"sourcePort", r.SourcePort},
		{"destinationPort", r.DestinationPort},
	}
	for _, p := range ports {
		field, port := p.field, p.value
		if err := validatePort(field, port); err != nil {
			errs = append(errs, err)
			continue
		}
		if port != Any && r.Protocol.Valid() && !r.Protocol.HasPorts() {
			errs = append(errs, invalid(field, "ports require tcp or udp, protocol is %s", r.Protocol))
		}
	}
	return errors.Join(errs...)
}

// validateEndpoint accepts "any", a single address or a CIDR prefix.
func validateEndpoint(field, v string) error {
	if v == Any {
		return nil
	}
	if v == "" {
		return invalid(field, "must not be empty")
	}
	if strings.Contains(v, "/") {
		if _, err := netip.ParsePrefix(v); err != nil {
			return invalid(field, "invalid prefix %q", v)
		}
		return nil
	}
	if _, err := netip.ParseAddr(v); err != nil {
		return invalid(field, "invalid address %q", v)
	}
	return nil
}

// validatePort accepts "any", a port or a "low-high" range.
func validatePort(field, v string) error {
	if v == Any {
		return nil
	}
	lo, hi, isRange := strings.Cut(v, "-")
	first, err := parsePort(lo)
	if err != nil {
		return invalid(field, "invalid port %q", v)
	}
	if !isRange {
		return nil
	}
	last, err := parsePort(hi)
	if err != nil || last < first {
		return invalid(field, "invalid port range %q", v)
	}
	return nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 65535 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
