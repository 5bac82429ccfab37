package store

import (
	"encoding/json"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the JSON form of two values.
// It returns "" when both render identically.
func Diff(label string, before, after any) (string, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a) + "\n"),
		B:        difflib.SplitLines(string(b) + "\n"),
		FromFile: label + " (before)",
		ToFile:   label + " (after)",
		Context:  2,
	})
}

func (s *Store) traceDiff(a Action, prev, next State) {
	before, ok := prev.Part(a.Collection())
	if !ok {
		return
	}
	after, _ := next.Part(a.Collection())

	diff, err := Diff(string(a.Collection()), before, after)
	if err != nil {
		s.logger.Warn("diff failed", "error", err)
		return
	}
	if diff == "" {
		return
	}
	s.logger.Debug("state diff", "action", a.Name(), "diff", diff)
}
