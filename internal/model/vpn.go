package model

import (
	"errors"
	"net/netip"
	"strings"
)

// TunnelType is the VPN technology behind a tunnel.
type TunnelType string

const (
	TunnelOpenVPN   TunnelType = "OpenVPN"
	TunnelWireGuard TunnelType = "WireGuard"
	TunnelIPsec     TunnelType = "IPsec"
)

// TunnelTypes lists every valid TunnelType.
var TunnelTypes = []TunnelType{TunnelOpenVPN, TunnelWireGuard, TunnelIPsec}

func (t TunnelType) Valid() bool {
	switch t {
	case TunnelOpenVPN, TunnelWireGuard, TunnelIPsec:
		return true
	}
	return false
}

func (t *TunnelType) UnmarshalText(b []byte) error {
	v, err := parseEnum("type", b, TunnelTypes)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TunnelStatus is the operational state of a tunnel.
type TunnelStatus string

const (
	TunnelActive   TunnelStatus = "active"
	TunnelInactive TunnelStatus = "inactive"
	TunnelError    TunnelStatus = "error"
)

// TunnelStatuses lists every valid TunnelStatus.
var TunnelStatuses = []TunnelStatus{TunnelActive, TunnelInactive, TunnelError}

func (s TunnelStatus) Valid() bool {
	switch s {
	case TunnelActive, TunnelInactive, TunnelError:
		return true
	}
	return false
}

func (s *TunnelStatus) UnmarshalText(b []byte) error {
	v, err := parseEnum("status", b, TunnelStatuses)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// VPNTunnel is a site-to-site or remote-access tunnel.
type VPNTunnel struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Type          TunnelType   `json:"type" yaml:"type"`
	Status        TunnelStatus `json:"status" yaml:"status"`
	LocalNetwork  string       `json:"localNetwork" yaml:"localNetwork"`
	RemoteNetwork string       `json:"remoteNetwork" yaml:"remoteNetwork"`
	Description   string       `json:"description" yaml:"description"`
}

func (t VPNTunnel) Kind() Kind       { return KindVPN }
func (t VPNTunnel) RecordID() string { return t.ID }

func (t VPNTunnel) WithID(id string) VPNTunnel {
	t.ID = id
	return t
}

// WithEnabled maps the enable switch onto Status since tunnels carry no
// separate flag: enabling makes the tunnel active, disabling inactive.
func (t VPNTunnel) WithEnabled(enabled bool) VPNTunnel {
	if enabled {
		t.Status = TunnelActive
	} else {
		t.Status = TunnelInactive
	}
	return t
}

// Enabled reports whether the tunnel is switched on. A tunnel in the
// error state is still enabled; it just failed to come up.
func (t VPNTunnel) Enabled() bool {
	switch t.Status {
	case TunnelActive, TunnelError:
		return true
	case TunnelInactive:
		return false
	}
	return false
}

func (t VPNTunnel) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, invalid("name", "must not be empty"))
	}
	if err := checkEnum("type", t.Type, TunnelTypes); err != nil {
		errs = append(errs, err)
	}
	if err := checkEnum("status", t.Status, TunnelStatuses); err != nil {
		errs = append(errs, err)
	}
	if _, err := netip.ParsePrefix(t.LocalNetwork); err != nil {
		errs = append(errs, invalid("localNetwork", "invalid prefix %q", t.LocalNetwork))
	}
	if _, err := netip.ParsePrefix(t.RemoteNetwork); err != nil {
		errs = append(errs, invalid("remoteNetwork", "invalid prefix %q", t.RemoteNetwork))
	}
	return errors.Join(errs...)
}
