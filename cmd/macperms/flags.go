package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/tmc/macperms/photokit"
)

// levelsValue is a repeatable --level flag accepting comma-separated access
// levels.
type levelsValue struct {
	levels []photokit.AccessLevel
	set    bool
}

var _ pflag.Value = (*levelsValue)(nil)

func newLevelsValue(defaults ...photokit.AccessLevel) *levelsValue {
	return &levelsValue{levels: defaults}
}

func (v *levelsValue) Set(s string) error {
	if !v.set {
		v.levels = nil
		v.set = true
	}
	for _, part := range strings.Split(s, ",") {
		l, err := photokit.ParseAccessLevel(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		v.levels = append(v.levels, l)
	}
	return nil
}

func (v *levelsValue) String() string {
	parts := make([]string, len(v.levels))
	for i, l := range v.levels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}

func (v *levelsValue) Type() string { return "level" }

// Levels returns the selected levels without duplicates.
func (v *levelsValue) Levels() []photokit.AccessLevel {
	seen := make(map[photokit.AccessLevel]bool)
	var out []photokit.AccessLevel
	for _, l := range v.levels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
