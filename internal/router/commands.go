package router

import (
	"sort"
)

// ArgRule describes how a command turns its OSC arguments into VLC query
// parameters.
type ArgRule int

const (
	// ArgNone ignores every argument.
	ArgNone ArgRule = iota
	// ArgFirstAsID requires one argument and sends it as id=<arg>.
	ArgFirstAsID
	// ArgFirstAsValue requires one argument and sends it as val=<arg>.
	ArgFirstAsValue
	// ArgOptionalFirstAsID sends id=<arg> when an argument is present.
	ArgOptionalFirstAsID
)

func (r ArgRule) String() string {
	switch r {
	case ArgNone:
		return "none"
	case ArgFirstAsID:
		return "first_as_id"
	case ArgFirstAsValue:
		return "first_as_value"
	case ArgOptionalFirstAsID:
		return "optional_first_as_id"
	default:
		return "unknown"
	}
}

// Command maps a public command name onto a VLC command.
type Command struct {
	Name string
	Wire string
	Rule ArgRule
}

// Suffix returns the query parameters produced from args, without a leading
// '&'. Extra arguments are ignored. Values are inserted verbatim.
func (c Command) Suffix(args []string) (string, error) {
	switch c.Rule {
	case ArgFirstAsID, ArgFirstAsValue:
		if len(args) == 0 {
			return "", &ArgumentError{Command: c.Name, Want: 1, Got: 0}
		}
		if c.Rule == ArgFirstAsID {
			return "id=" + args[0], nil
		}
		return "val=" + args[0], nil
	case ArgOptionalFirstAsID:
		if len(args) == 0 {
			return "", nil
		}
		return "id=" + args[0], nil
	default:
		return "", nil
	}
}

// Query returns the full VLC query for args, e.g. "command=seek&val=30".
func (c Command) Query(args []string) (string, error) {
	suffix, err := c.Suffix(args)
	if err != nil {
		return "", err
	}

	query := "command=" + c.Wire
	if suffix != "" {
		query += "&" + suffix
	}
	return query, nil
}

// CommandTable is the read-only command vocabulary.
type CommandTable struct {
	commands map[string]Command
}

// NewCommandTable builds a table from cmds. A later command with the same
// name replaces an earlier one.
func NewCommandTable(cmds ...Command) *CommandTable {
	t := &CommandTable{commands: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		t.commands[c.Name] = c
	}
	return t
}

// DefaultCommands returns the VLC vocabulary understood by the bridge.
func DefaultCommands() *CommandTable {
	return NewCommandTable(
		Command{Name: "play", Wire: "pl_play", Rule: ArgOptionalFirstAsID},
		Command{Name: "pause", Wire: "pl_pause", Rule: ArgNone},
		Command{Name: "stop", Wire: "pl_stop", Rule: ArgNone},
		Command{Name: "seek", Wire: "seek", Rule: ArgFirstAsValue},
		Command{Name: "volume", Wire: "volume", Rule: ArgFirstAsValue},
		Command{Name: "fullscreen", Wire: "fullscreen", Rule: ArgNone},
	)
}

// Lookup returns the command registered under name.
func (t *CommandTable) Lookup(name string) (Command, bool) {
	c, ok := t.commands[name]
	return c, ok
}

// Names returns the public command names in sorted order.
func (t *CommandTable) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
