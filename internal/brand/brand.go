// Package brand holds the product identity. The values live in brand.json
// so packaging scripts read the same source.
package brand

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Identity names the product on every surface.
type Identity struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	Tagline          string `json:"tagline"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	ConfigFileName   string `json:"configFileName"`
	BinaryName       string `json:"binaryName"`
}

var (
	Name             string
	LowerName        string
	Description      string
	Tagline          string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	ConfigFileName   string
	BinaryName       string
)

// Set at build time with -ldflags "-X grimm.is/rampart/internal/brand.Version=...".
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	var id Identity
	if err := json.Unmarshal(brandJSON, &id); err != nil {
		panic(fmt.Sprintf("brand.json: %v", err))
	}
	Name, LowerName, Description, Tagline = id.Name, id.LowerName, id.Description, id.Tagline
	ConfigEnvPrefix, DefaultConfigDir = id.ConfigEnvPrefix, id.DefaultConfigDir
	ConfigFileName, BinaryName = id.ConfigFileName, id.BinaryName
}

// ConfigDir is $RAMPART_CONFIG_DIR when set, else DefaultConfigDir.
func ConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// DefaultConfigPath is the config file inside ConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// UserAgent identifies remote console requests.
func UserAgent() string {
	return BinaryName + "/" + Version
}
