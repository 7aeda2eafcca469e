package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

const indentUnit = 4

func indent(level int) string { return strings.Repeat(" ", indentUnit*level) }

type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

// Set accepts an empty string as true so that "-k" and "--tokens" need no
// argument.
func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }

// listValue appends every occurrence of the flag.
type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

func (f *Flag) isBool() bool {
	_, ok := f.Value.(*boolValue)
	return ok
}

// FlagGroup is a family of -<prefix><name> / -<prefix>no-<name> toggles,
// such as the -W warnings.
type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name          string
	flags         map[string]*Flag
	shorthands    map[string]*Flag
	specialPrefix map[string]*Flag
	args          []string
	flagGroups    []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:          name,
		flags:         make(map[string]*Flag),
		shorthands:    make(map[string]*Flag),
		specialPrefix: make(map[string]*Flag),
	}
}

// Args returns the arguments left after the flags.
func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) List(p *[]string, name, shorthand string, value []string, usage, expectedType string) {
	*p = value
	f.Var(&listValue{p}, name, shorthand, usage, "", expectedType)
}

// Special registers a flag whose value is glued to its prefix, as in
// -DNAME=PATTERN. Every occurrence is appended to p.
func (f *FlagSet) Special(p *[]string, prefix, usage, expectedType string) {
	*p = []string{}
	f.Var(&listValue{p}, prefix, "", usage, "", expectedType)
	f.specialPrefix[prefix] = f.flags[prefix]
}

// AddFlagGroup registers the enable and disable flag of every entry.
func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	for _, e := range entries {
		if e.Enabled != nil {
			f.Bool(e.Enabled, e.Prefix+e.Name, "", *e.Enabled, e.Usage)
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, e.Prefix+"no-"+e.Name, "", *e.Disabled, "Disable '"+e.Name+"'")
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name:                 name,
		Description:          description,
		Flags:                entries,
		GroupType:            groupType,
		AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

// Parse sets the flags found in arguments. Anything that is not a flag,
// and everything after "--", is kept as a positional argument.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case strings.HasPrefix(arg, "--"):
			name, value, hasValue := strings.Cut(arg[2:], "=")
			if name == "" {
				return fmt.Errorf("empty flag name")
			}
			flag, ok := f.flags[name]
			if !ok {
				return fmt.Errorf("unknown flag: --%s", name)
			}
			if err := f.set(flag, "--"+name, value, hasValue, arguments, &i); err != nil {
				return err
			}
		default:
			if err := f.parseSingleDash(arg, arguments, &i); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseSingleDash handles, in order: long names with one dash (-Wall),
// group flags, prefix flags (-DX=y) and shorthands (-o file, -ofile, -k).
func (f *FlagSet) parseSingleDash(arg string, arguments []string, i *int) error {
	body := arg[1:]
	name, value, hasValue := strings.Cut(body, "=")
	if flag, ok := f.flags[name]; ok {
		return f.set(flag, "-"+name, value, hasValue, arguments, i)
	}
	if group, ok := f.groupFor(arg); ok {
		return fmt.Errorf("unknown %s: %s", group.GroupType, arg)
	}
	for prefix, flag := range f.specialPrefix {
		if strings.HasPrefix(body, prefix) && len(body) > len(prefix) {
			return flag.Value.Set(body[len(prefix):])
		}
	}

	short := body[:1]
	flag, ok := f.shorthands[short]
	if !ok {
		return fmt.Errorf("unknown shorthand flag: -%s", short)
	}
	if flag.isBool() {
		return flag.Value.Set("")
	}
	if rest := body[1:]; rest != "" {
		return flag.Value.Set(rest)
	}
	return f.set(flag, "-"+short, "", false, arguments, i)
}

// set applies an inline value, or for non-boolean flags consumes the next
// argument.
func (f *FlagSet) set(flag *Flag, shown, value string, hasValue bool, arguments []string, i *int) error {
	switch {
	case hasValue:
		return flag.Value.Set(value)
	case flag.isBool():
		return flag.Value.Set("")
	case *i+1 >= len(arguments):
		return fmt.Errorf("flag needs an argument: %s", shown)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

// groupFor returns the flag group whose prefix arg carries.
func (f *FlagSet) groupFor(arg string) (FlagGroup, bool) {
	for _, group := range f.flagGroups {
		if len(group.Flags) == 0 {
			continue
		}
		prefix := "-" + group.Flags[0].Prefix
		if strings.HasPrefix(arg, prefix) && len(arg) > len(prefix) {
			return group, true
		}
	}
	return FlagGroup{}, false
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	Since       int
	FlagSet     *FlagSet
	Action      func(args []string) error
	Stdout      io.Writer
	Stderr      io.Writer
}

func NewApp(name string) *App {
	return &App{
		Name:    name,
		FlagSet: NewFlagSet(name),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run parses arguments and calls Action with the positional ones. A parse
// error prints the usage page to Stderr; --help prints the help page.
func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintf(a.Stderr, "%s: %v\n", a.Name, err)
		a.writeUsage(a.Stderr)
		return err
	}
	if help {
		a.writeHelp(a.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) writeUsage(w io.Writer) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Usage: %s %s\n", a.Name, a.Synopsis)

	if flags := a.optionFlags(); len(flags) > 0 {
		l := newLayout(flags, nil)
		fmt.Fprintf(&sb, "\n%sOptions\n", indent(1))
		for _, flag := range flags {
			l.flagLine(&sb, flag)
		}
	}
	fmt.Fprintf(&sb, "\nRun '%s --help' for all available options and flags.\n", a.Name)
	fmt.Fprint(w, sb.String())
}

func (a *App) writeHelp(w io.Writer) {
	var sb strings.Builder
	flags := a.optionFlags()
	groups := append([]FlagGroup(nil), a.FlagSet.flagGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	l := newLayout(flags, groups)

	years := strconv.Itoa(time.Now().Year())
	if a.Since > 0 && a.Since < time.Now().Year() {
		years = strconv.Itoa(a.Since) + "-" + years
	}
	fmt.Fprintf(&sb, "\n%sCopyright (c) %s: %s and contributors\n", indent(1), years, strings.Join(a.Authors, ", "))
	if a.Repository != "" {
		fmt.Fprintf(&sb, "%sFor more details refer to %s\n", indent(1), a.Repository)
	}
	if a.Synopsis != "" {
		synopsis := strings.NewReplacer("[", "<", "]", ">").Replace(a.Synopsis)
		fmt.Fprintf(&sb, "\n%sSynopsis\n%s%s %s\n", indent(1), indent(2), a.Name, synopsis)
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%sDescription\n", indent(1))
		for _, line := range wrapText(a.Description, l.termWidth-len(indent(2))) {
			fmt.Fprintf(&sb, "%s%s\n", indent(2), line)
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, "\n%sOptions\n", indent(1))
		for _, flag := range flags {
			l.flagLine(&sb, flag)
		}
	}
	for _, group := range groups {
		l.group(&sb, group)
	}
	fmt.Fprint(w, sb.String())
}

// optionFlags returns the flags listed under Options, sorted by name.
// Prefix flags and group toggles are documented elsewhere.
func (a *App) optionFlags() []*Flag {
	grouped := make(map[string]bool)
	for _, group := range a.FlagSet.flagGroups {
		for _, e := range group.Flags {
			grouped[e.Prefix+e.Name] = true
			grouped[e.Prefix+"no-"+e.Name] = true
		}
	}
	var flags []*Flag
	for name, flag := range a.FlagSet.flags {
		if grouped[name] {
			continue
		}
		if _, special := a.FlagSet.specialPrefix[name]; special {
			continue
		}
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })
	return flags
}

// layout aligns the left column of every entry on a page.
type layout struct {
	termWidth  int
	leftWidth  int
	usageWidth int
}

func newLayout(flags []*Flag, groups []FlagGroup) *layout {
	l := &layout{termWidth: terminalWidth()}
	fit := func(left, usage string) {
		l.leftWidth = max(l.leftWidth, len(left))
		l.usageWidth = max(l.usageWidth, len(usage))
	}
	for _, flag := range flags {
		fit(flagString(flag), flag.Usage)
	}
	for _, group := range groups {
		prefix := group.Flags[0].Prefix
		fit(fmt.Sprintf("-%sno-<%s>", prefix, group.GroupType), "")
		for _, e := range group.Flags {
			fit(e.Name, e.Usage)
		}
	}
	return l
}

func flagString(flag *Flag) string {
	arg := ""
	if !flag.isBool() && flag.ExpectedType != "" {
		arg = " <" + flag.ExpectedType + ">"
	}
	if flag.Shorthand != "" {
		return fmt.Sprintf("-%s%s, --%s%s", flag.Shorthand, arg, flag.Name, arg)
	}
	if arg != "" {
		return "--" + flag.Name + "=" + flag.ExpectedType
	}
	return "--" + flag.Name
}

func (l *layout) flagLine(sb *strings.Builder, flag *Flag) {
	right := ""
	if !flag.isBool() && flag.DefValue != "" {
		right = "|" + flag.DefValue + "|"
	}
	l.entry(sb, flagString(flag), flag.Usage, right)
}

// entry writes "left usage |right|", wrapping usage under itself when the
// terminal is too narrow.
func (l *layout) entry(sb *strings.Builder, left, usage, right string) {
	prefix := indent(2)
	width := l.termWidth - len(prefix) - l.leftWidth - 1
	if right != "" {
		width -= len(right) + 2
	}
	width = max(width, 10)
	lines := wrapText(usage, width)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}

	if right != "" {
		fmt.Fprintf(sb, "%s%-*s %-*s  %s\n", prefix, l.leftWidth, left, min(l.usageWidth, width), first, right)
	} else {
		fmt.Fprintf(sb, "%s%-*s %s\n", prefix, l.leftWidth, left, first)
	}
	pad := strings.Repeat(" ", l.leftWidth+1)
	for _, line := range lines[min(1, len(lines)):] {
		fmt.Fprintf(sb, "%s%s%s\n", prefix, pad, line)
	}
}

func (l *layout) group(sb *strings.Builder, group FlagGroup) {
	prefix := group.Flags[0].Prefix
	kind := group.GroupType
	if kind == "" {
		kind = "flag"
	}
	fmt.Fprintf(sb, "\n%s%s\n", indent(1), group.Name)
	fmt.Fprintf(sb, "%s%-*s Enable a specific %s\n", indent(2), l.leftWidth, fmt.Sprintf("-%s<%s>", prefix, kind), kind)
	fmt.Fprintf(sb, "%s%-*s Disable a specific %s\n", indent(2), l.leftWidth, fmt.Sprintf("-%sno-<%s>", prefix, kind), kind)
	if group.AvailableFlagsHeader != "" {
		fmt.Fprintf(sb, "%s%s\n", indent(1), group.AvailableFlagsHeader)
	}

	entries := append([]FlagGroupEntry(nil), group.Flags...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		state := "|-|"
		if e.Enabled != nil && *e.Enabled && (e.Disabled == nil || !*e.Disabled) {
			state = "|x|"
		}
		l.entry(sb, e.Name, e.Usage, state)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	lines := []string{}
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
