// Package fixtures loads the seed records shared by the in-memory backends.
package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v2"

	"grimm.is/rampart/internal/model"
)

//go:embed seed.yaml
var seed []byte

// Fixtures is one complete set of seed records.
type Fixtures struct {
	Firewall []model.FirewallRule     `yaml:"firewall"`
	VPN      []model.VPNTunnel        `yaml:"vpn"`
	Network  []model.NetworkInterface `yaml:"network"`
	System   model.SystemInfo         `yaml:"system"`
	Updates  []model.Update           `yaml:"updates"`
	Users    []model.UserAccount      `yaml:"users"`
}

// Default returns the embedded seed set.
func Default() (*Fixtures, error) {
	return Parse(seed)
}

// MustDefault is Default for callers that cannot recover from a broken binary.
func MustDefault() *Fixtures {
	f, err := Default()
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads a seed set from path, or the embedded one when path is empty.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a YAML seed set.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every record and id uniqueness per collection.
func (f *Fixtures) Validate() error {
	var errs []error
	errs = append(errs, validateAll("firewall", f.Firewall)...)
	errs = append(errs, validateAll("vpn", f.VPN)...)
	errs = append(errs, validateAll("network", f.Network)...)
	errs = append(errs, validateAll("users", f.Users)...)

	seen := map[string]bool{}
	for _, u := range f.Updates {
		if seen[u.ID] {
			errs = append(errs, fmt.Errorf("updates: duplicate id %q", u.ID))
		}
		seen[u.ID] = true
	}
	return errors.Join(errs...)
}

func validateAll[T model.Record[T]](name string, records []T) []error {
	var errs []error
	seen := map[string]bool{}
	for _, r := range records {
		id := r.RecordID()
		if seen[id] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", name, id))
		}
		seen[id] = true
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", name, id, err))
		}
	}
	return errs
}

// Clone returns a deep copy so callers may modify the result freely.
func (f *Fixtures) Clone() *Fixtures {
	return &Fixtures{
		Firewall: slices.Clone(f.Firewall),
		VPN:      slices.Clone(f.VPN),
		Network:  slices.Clone(f.Network),
		System:   f.System,
		Updates:  slices.Clone(f.Updates),
		Users:    slices.Clone(f.Users),
	}
}
