package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Marshal renders cfg as formatted HCL.
func Marshal(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("listen", cty.StringVal(cfg.Listen))
	body.SetAttributeValue("language", cty.StringVal(cfg.Language))

	if cfg.Log != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("log", nil).Body()
		b.SetAttributeValue("level", cty.StringVal(cfg.Log.Level))
		b.SetAttributeValue("json", cty.BoolVal(cfg.Log.JSON))
	}

	if p := cfg.Provider; p != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("provider", nil).Body()
		b.SetAttributeValue("backend", cty.StringVal(p.Backend))
		if p.SeedFile != "" {
			b.SetAttributeValue("seed_file", cty.StringVal(p.SeedFile))
		}
		b.SetAttributeValue("system_source", cty.StringVal(p.SystemSource))
		b.SetAttributeValue("disk_path", cty.StringVal(p.DiskPath))
		if p.Latency != "" {
			b.SetAttributeValue("latency", cty.StringVal(p.Latency))
		}
	}

	for _, fault := range cfg.Faults {
		body.AppendNewline()
		b := body.AppendNewBlock("fault", []string{fault.Kind, fault.Op}).Body()
		if fault.Message != "" {
			b.SetAttributeValue("message", cty.StringVal(fault.Message))
		}
	}

	if cfg.Metrics != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("metrics", nil).Body()
		b.SetAttributeValue("enabled", cty.BoolVal(cfg.Metrics.IsEnabled()))
		b.SetAttributeValue("path", cty.StringVal(cfg.Metrics.Path))
	}

	if cfg.Store != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("store", nil).Body()
		b.SetAttributeValue("trace_diffs", cty.BoolVal(cfg.Store.TraceDiffs))
	}

	if l := cfg.LoginLimit; l != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("login_limit", nil).Body()
		b.SetAttributeValue("enabled", cty.BoolVal(l.IsEnabled()))
		b.SetAttributeValue("attempts", cty.NumberIntVal(int64(l.Attempts)))
		b.SetAttributeValue("window", cty.StringVal(l.Window))
	}

	return hclwrite.Format(f.Bytes())
}

// WriteFile writes cfg to path, creating its directory. An existing file
// is only replaced when overwrite is set.
func WriteFile(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, Marshal(cfg), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
