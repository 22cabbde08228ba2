// Package mud implements the runtime core of the engine: permission
// filters, partially-applied command descriptors, class action tables,
// and the registration protocol that keeps every character's live
// command table equal to the union of what its class, its equipment,
// and the entities around it currently grant.
package mud

import (
	"fmt"
	"sync/atomic"
)

// ID uniquely identifies a character for the life of the process.
// IDs are never reused, so a stale ID held by a Filter is inert.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Action is a named invocable, the underlying function of one or more
// Commands. Actions are registered explicitly at class-definition time;
// nothing in the engine discovers them by reflection.
//
// Run receives the descriptor's bound arguments and keywords followed
// by the dispatch-time argument tokens (argv[0] is the verb).
type Action struct {
	Name string
	Help string
	Run  func(bound []any, kw map[string]any, argv []string)
}

// Command is a partially-applied, permission-guarded invocable bound
// to a verb. Identity is structural: two commands are equal when they
// share the same action, bound arguments, and keywords, no matter how
// many Specify calls derived them. Display name, provenance label, and
// filter are satellite data excluded from equality and shared (not
// copied) across derivation.
//
// Bound arguments and keyword values must be comparable types
// (pointers, strings, numbers); they participate in equality via ==.
type Command struct {
	action *Action
	args   []any
	kw     map[string]any
	name   string // display name; empty means the action's name
	label  string // provenance, e.g. "Wizard Commands" or "Equipped"
	filter *Filter
}

// NewCommand wraps action with the given initial bound arguments and a
// permit-everyone filter.
func NewCommand(action *Action, args ...any) *Command {
	return &Command{
		action: action,
		args:   args,
		kw:     map[string]any{},
		filter: NewFilter(Blacklist),
	}
}

// WithTraits sets the command's display name, provenance label, and
// filter in one call. Zero values leave the current trait unchanged.
// It returns the command for declaration chaining.
func (c *Command) WithTraits(name, label string, filter *Filter) *Command {
	if name != "" {
		c.name = name
	}
	if label != "" {
		c.label = label
	}
	if filter != nil {
		c.filter = filter
	}
	return c
}

// Name returns the verb this command registers under.
func (c *Command) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.action.Name
}

func (c *Command) String() string { return c.Name() }

// Label returns the command's provenance label.
func (c *Command) Label() string { return c.label }

// Filter returns the command's permission filter. The filter is shared
// across every derivation of this command: attach it once per class and
// mutations reach every per-character specialization.
func (c *Command) Filter() *Filter { return c.filter }

// Action returns the underlying action.
func (c *Command) Action() *Action { return c.action }

// Specify derives a new command with extra bound arguments appended.
// Satellite data (name, label, filter) is propagated by reference.
func (c *Command) Specify(args ...any) *Command {
	return c.SpecifyKw(nil, args...)
}

// SpecifyKw derives a new command with extra bound arguments and
// keyword bindings. A keyword already bound is overridden: the later
// application wins.
func (c *Command) SpecifyKw(kw map[string]any, args ...any) *Command {
	merged := make(map[string]any, len(c.kw)+len(kw))
	for k, v := range c.kw {
		merged[k] = v
	}
	for k, v := range kw {
		merged[k] = v
	}
	newArgs := make([]any, 0, len(c.args)+len(args))
	newArgs = append(newArgs, c.args...)
	newArgs = append(newArgs, args...)
	return &Command{
		action: c.action,
		args:   newArgs,
		kw:     merged,
		name:   c.name,
		label:  c.label,
		filter: c.filter,
	}
}

// Equal reports structural equality over (action, args, keywords).
func (c *Command) Equal(other *Command) bool {
	if other == nil || c.action != other.action || len(c.args) != len(other.args) || len(c.kw) != len(other.kw) {
		return false
	}
	for i, a := range c.args {
		if a != other.args[i] {
			return false
		}
	}
	for k, v := range c.kw {
		ov, ok := other.kw[k]
		if !ok || v != ov {
			return false
		}
	}
	return true
}

// Invoke runs the command with the dispatch-time argument tokens.
func (c *Command) Invoke(argv []string) {
	c.action.Run(c.args, c.kw, argv)
}

// HelpEntry returns the help text shown for this command, prefixed
// with its provenance when one is set.
func (c *Command) HelpEntry() string {
	if c.label != "" {
		return fmt.Sprintf("%s [from %s]:\n%s", c.Name(), c.label, c.action.Help)
	}
	return fmt.Sprintf("%s:\n%s", c.Name(), c.action.Help)
}
