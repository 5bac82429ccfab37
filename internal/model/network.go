package model

import (
	"errors"
	"net"
	"net/netip"
	"strings"
)

// InterfaceType is the role of an interface on the appliance.
type InterfaceType string

const (
	InterfaceLAN InterfaceType = "LAN"
	InterfaceWAN InterfaceType = "WAN"
	InterfaceOPT InterfaceType = "OPT"
)

// InterfaceTypes lists every valid InterfaceType.
var InterfaceTypes = []InterfaceType{InterfaceLAN, InterfaceWAN, InterfaceOPT}

func (t InterfaceType) Valid() bool {
	switch t {
	case InterfaceLAN, InterfaceWAN, InterfaceOPT:
		return true
	}
	return false
}

func (t *InterfaceType) UnmarshalText(b []byte) error {
	v, err := parseEnum("type", b, InterfaceTypes)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// LinkStatus is the link state of an interface.
type LinkStatus string

const (
	LinkUp   LinkStatus = "up"
	LinkDown LinkStatus = "down"
)

// LinkStatuses lists every valid LinkStatus.
var LinkStatuses = []LinkStatus{LinkUp, LinkDown}

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkUp, LinkDown:
		return true
	}
	return false
}

func (s *LinkStatus) UnmarshalText(b []byte) error {
	v, err := parseEnum("status", b, LinkStatuses)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MTU bounds accepted by Validate.
const (
	MinMTU = 68
	MaxMTU = 9216
)

// NetworkInterface is one physical or logical port.
type NetworkInterface struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Type      InterfaceType `json:"type" yaml:"type"`
	IPAddress string        `json:"ipAddress" yaml:"ipAddress"`
	Subnet    string        `json:"subnet" yaml:"subnet"`
	Gateway   string        `json:"gateway" yaml:"gateway"`
	Status    LinkStatus    `json:"status" yaml:"status"`
	MAC       string        `json:"mac" yaml:"mac"`
	MTU       int           `json:"mtu" yaml:"mtu"`
	Enabled   bool          `json:"enabled" yaml:"enabled"`
}

func (n NetworkInterface) Kind() Kind       { return KindNetwork }
func (n NetworkInterface) RecordID() string { return n.ID }

func (n NetworkInterface) WithID(id string) NetworkInterface {
	n.ID = id
	return n
}

// WithEnabled sets Enabled and derives Status from it.
func (n NetworkInterface) WithEnabled(enabled bool) NetworkInterface {
	n.Enabled = enabled
	if enabled {
		n.Status = LinkUp
	} else {
		n.Status = LinkDown
	}
	return n
}

func (n NetworkInterface) Validate() error {
	var errs []error
	if strings.TrimSpace(n.Name) == "" {
		errs = append(errs, invalid("name", "must not be empty"))
	}
	if err := checkEnum("type", n.Type, InterfaceTypes); err != nil {
		errs = append(errs, err)
	}
	if err := checkEnum("status", n.Status, LinkStatuses); err != nil {
		errs = append(errs, err)
	}
	if _, err := netip.ParseAddr(n.IPAddress); err != nil {
		errs = append(errs, invalid("ipAddress", "invalid address %q", n.IPAddress))
	}
	if !validMask(n.Subnet) {
		errs = append(errs, invalid("subnet", "invalid netmask %q", n.Subnet))
	}
	if n.Gateway != "" {
		if _, err := netip.ParseAddr(n.Gateway); err != nil {
			errs = append(errs, invalid("gateway", "invalid address %q", n.Gateway))
		}
	}
	if _, err := net.ParseMAC(n.MAC); err != nil {
		errs = append(errs, invalid("mac", "invalid hardware address %q", n.MAC))
	}
	if n.MTU < MinMTU || n.MTU > MaxMTU {
		errs = append(errs, invalid("mtu", "%d outside %d-%d", n.MTU, MinMTU, MaxMTU))
	}
	return errors.Join(errs...)
}

// validMask accepts a dotted IPv4 netmask with contiguous ones.
func validMask(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return false
	}
	b := addr.As4()
	_, bits := net.IPv4Mask(b[0], b[1], b[2], b[3]).Size()
	return bits == 32
}
