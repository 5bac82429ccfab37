package model

import "strings"

// CPUInfo describes the processor.
type CPUInfo struct {
	Model       string  `json:"model" yaml:"model"`
	Usage       float64 `json:"usage" yaml:"usage"`             // percent
	Temperature float64 `json:"temperature" yaml:"temperature"` // celsius
}

// Capacity is a total/used/free triple in megabytes.
type Capacity struct {
	Total int64 `json:"total" yaml:"total"`
	Used  int64 `json:"used" yaml:"used"`
	Free  int64 `json:"free" yaml:"free"`
}

// SystemInfo is the appliance singleton. It is replaced wholesale on fetch
// and only its Version is patched when an update is installed.
type SystemInfo struct {
	Version  string   `json:"version" yaml:"version"`
	Hostname string   `json:"hostname" yaml:"hostname"`
	Domain   string   `json:"domain" yaml:"domain"`
	Uptime   string   `json:"uptime" yaml:"uptime"`
	CPU      CPUInfo  `json:"cpu" yaml:"cpu"`
	Memory   Capacity `json:"memory" yaml:"memory"`
	Disk     Capacity `json:"disk" yaml:"disk"`
}

// Kind reports the collection the singleton lives in.
func (SystemInfo) Kind() Kind { return KindSystem }

// FQDN joins hostname and domain.
func (s SystemInfo) FQDN() string {
	if s.Domain == "" {
		return s.Hostname
	}
	return strings.Join([]string{s.Hostname, s.Domain}, ".")
}

// Update is one firmware release known to the appliance.
type Update struct {
	ID          string `json:"id" yaml:"id"`
	Version     string `json:"version" yaml:"version"`
	ReleaseDate string `json:"releaseDate" yaml:"releaseDate"`
	Description string `json:"description" yaml:"description"`
	Size        string `json:"size" yaml:"size"`
	Installed   bool   `json:"installed" yaml:"installed"`
}

// InstalledUpdate returns the update currently marked installed, if any.
func InstalledUpdate(updates []Update) (Update, bool) {
	for _, u := range updates {
		if u.Installed {
			return u, true
		}
	}
	return Update{}, false
}
