package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xplshn/glex/pkg/cli"
)

type Feature int

const (
	FeatMinimize Feature = iota
	FeatDefaultChars
	FeatCompress
	FeatCount
)

type Warning int

const (
	WarnShadowed Warning = iota
	WarnNullable
	WarnLargeTable
	WarnUnmatched
	WarnExtra
	WarnCount
)

const (
	DefaultMaxRepeat  = 255
	DefaultMaxStates  = 1 << 16
	DefaultLargeTable = 4096
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	// MaxRepeat is the largest bound accepted in {m,n}.
	MaxRepeat int
	// MaxStates bounds subset construction.
	MaxStates int
	// LargeTable is the state count above which -Wlarge-table fires.
	LargeTable int

	Backend     string
	PackageName string
	LexerName   string

	wallFlags [2]*bool
}

func NewConfig() *Config {
	cfg := &Config{
		Features:    make(map[Feature]Info),
		Warnings:    make(map[Warning]Info),
		FeatureMap:  make(map[string]Feature),
		WarningMap:  make(map[string]Warning),
		MaxRepeat:   DefaultMaxRepeat,
		MaxStates:   DefaultMaxStates,
		LargeTable:  DefaultLargeTable,
		Backend:     "go",
		PackageName: "lexer",
		LexerName:   "Lexer",
	}

	features := map[Feature]Info{
		FeatMinimize:     {"minimize", true, "Merge equivalent DFA states before emitting the table."},
		FeatDefaultChars: {"default-chars", false, "Return unmatched bytes as single-byte tokens whose id is the byte value."},
		FeatCompress:     {"compress", false, "Emit byte equivalence classes and a narrower transition table."},
	}

	warnings := map[Warning]Info{
		WarnShadowed:   {"shadowed", true, "Warn about tokens that earlier declarations always win over."},
		WarnNullable:   {"nullable", true, "Warn about patterns that match the empty string."},
		WarnLargeTable: {"large-table", true, "Warn when the DFA exceeds the large-table state count."},
		WarnUnmatched:  {"unmatched", true, "Report bytes that no token matches when tokenizing inputs."},
		WarnExtra:      {"extra", false, "Enable extra miscellaneous warnings, like token names differing only in case."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// WarningName returns the flag name of wt, as printed after a warning.
func (c *Config) WarningName(wt Warning) string { return c.Warnings[wt].Name }

// Validate checks the limits.
func (c *Config) Validate() error {
	if c.MaxRepeat < 1 || c.MaxRepeat > 1<<16 {
		return fmt.Errorf("max-repeat %d out of range [1, %d]", c.MaxRepeat, 1<<16)
	}
	if c.MaxStates < 2 {
		return fmt.Errorf("max-states %d must be at least 2", c.MaxStates)
	}
	if c.LargeTable < 1 {
		return fmt.Errorf("large-table threshold %d must be positive", c.LargeTable)
	}
	return nil
}

// ApplyFlag handles one -W<name>, -Wno-<name>, -F<name> or -Fno-<name>
// flag. -Wall and -Wno-all toggle every warning.
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var isWarning bool
	switch {
	case strings.HasPrefix(trimmed, "W"):
		isWarning = true
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "F"):
		trimmed = trimmed[1:]
	default:
		return fmt.Errorf("not a warning or feature flag: %s", flag)
	}
	name, isNo := strings.CutPrefix(trimmed, "no-")
	enable := !isNo

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return nil
	}

	if isWarning {
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}
	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// SetupFlagGroups registers -W and -F flag groups on fs. The returned
// entries are indexed by Warning and Feature; pass them to ApplyFlagGroups
// after parsing.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warningFlags, featureFlags []cli.FlagGroupEntry) {
	warningFlags = make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = cli.FlagGroupEntry{
			Name:     info.Name,
			Prefix:   "W",
			Usage:    info.Description,
			Enabled:  new(bool),
			Disabled: new(bool),
		}
	}
	all, noAll := false, false
	fs.Bool(&all, "Wall", "", false, "Enable all warnings")
	fs.Bool(&noAll, "Wno-all", "", false, "Disable all warnings")
	c.wallFlags = [2]*bool{&all, &noAll}

	featureFlags = make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = cli.FlagGroupEntry{
			Name:     info.Name,
			Prefix:   "F",
			Usage:    info.Description,
			Enabled:  new(bool),
			Disabled: new(bool),
		}
	}

	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", sortedEntries(warningFlags))
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available Features:", sortedEntries(featureFlags))
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies parsed group flags into the configuration. -Wall
// and -Wno-all apply first so that specific flags override them.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	if c.wallFlags[0] != nil && *c.wallFlags[0] {
		_ = c.ApplyFlag("-Wall")
	}
	if c.wallFlags[1] != nil && *c.wallFlags[1] {
		_ = c.ApplyFlag("-Wno-all")
	}
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}

// sortedEntries returns a copy of entries ordered by name. The pointers are
// shared, so the copy registers the same flags.
func sortedEntries(entries []cli.FlagGroupEntry) []cli.FlagGroupEntry {
	out := append([]cli.FlagGroupEntry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
