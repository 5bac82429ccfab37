package tui

import (
	"errors"
	"net/netip"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"grimm.is/rampart/internal/model"
)

// ruleForm backs the "new firewall rule" form. huh writes straight into
// its fields.
type ruleForm struct {
	Action          model.RuleAction
	Protocol        model.Protocol
	Source          string
	Destination     string
	SourcePort      string
	DestinationPort string
	Description     string
	Enabled         bool
}

func newRuleForm() *ruleForm {
	return &ruleForm{
		Action:          model.ActionAllow,
		Protocol:        model.ProtocolTCP,
		Source:          model.Any,
		Destination:     model.Any,
		SourcePort:      model.Any,
		DestinationPort: model.Any,
		Enabled:         true,
	}
}

// Form lays the draft out as two pages: matching, then ports and notes.
func (f *ruleForm) Form() *huh.Form {
	match := huh.NewGroup(
		huh.NewSelect[model.RuleAction]().
			Title("Action").
			Options(huh.NewOptions(model.RuleActions...)...).
			Value(&f.Action),
		huh.NewSelect[model.Protocol]().
			Title("Protocol").
			Options(huh.NewOptions(model.Protocols...)...).
			Value(&f.Protocol),
		huh.NewInput().Title("Source").Description("any, an address or a CIDR").
			Value(&f.Source).Validate(validEndpoint),
		huh.NewInput().Title("Destination").Description("any, an address or a CIDR").
			Value(&f.Destination).Validate(validEndpoint),
	)
	detail := huh.NewGroup(
		huh.NewInput().Title("Source port").Value(&f.SourcePort).Validate(validPort),
		huh.NewInput().Title("Destination port").Value(&f.DestinationPort).Validate(validPort),
		huh.NewInput().Title("Description").Value(&f.Description),
		huh.NewConfirm().Title("Enabled").Value(&f.Enabled),
	)
	return huh.NewForm(match, detail).WithTheme(huh.ThemeBase16())
}

// Rule converts the draft into a validated record.
func (f *ruleForm) Rule() (model.FirewallRule, error) {
	r := model.FirewallRule{
		Action:          f.Action,
		Protocol:        f.Protocol,
		Source:          strings.TrimSpace(f.Source),
		Destination:     strings.TrimSpace(f.Destination),
		SourcePort:      strings.TrimSpace(f.SourcePort),
		DestinationPort: strings.TrimSpace(f.DestinationPort),
		Description:     strings.TrimSpace(f.Description),
		Enabled:         f.Enabled,
	}
	return r, r.Validate()
}

var (
	errEndpoint = errors.New(`must be "any", an address or a CIDR such as 192.168.1.0/24`)
	errPort     = errors.New(`must be "any", a port or a range such as 8000-8080`)
)

func validEndpoint(s string) error {
	s = strings.TrimSpace(s)
	if s == model.Any {
		return nil
	}
	if _, err := netip.ParsePrefix(s); err == nil {
		return nil
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return nil
	}
	return errEndpoint
}

func validPort(s string) error {
	s = strings.TrimSpace(s)
	if s == model.Any {
		return nil
	}
	lo, hi, isRange := strings.Cut(s, "-")
	bounds := []string{lo}
	if isRange {
		bounds = append(bounds, hi)
	}
	for _, b := range bounds {
		if n, err := strconv.Atoi(b); err != nil || n < 1 || n > 65535 {
			return errPort
		}
	}
	return nil
}
