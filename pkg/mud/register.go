package mud

import (
	"errors"
	"fmt"
	"sort"
)

// Source is anything that contributes commands to a character: an
// entity sharing its room, or an item sitting in one of its slots.
type Source interface {
	// SourceName is the suffix used to disambiguate colliding verbs.
	SourceName() string
	// ActionTable is the source's class-level command table.
	ActionTable() *Class
	// colocated returns the other currently-active sources this one
	// competes with for verb names, from ch's point of view.
	colocated(ch *Character) []Source
}

// permittedNames returns the set of verb names src offers ch after
// permission filtering.
func permittedNames(src Source, ch *Character) map[string]struct{} {
	names := make(map[string]struct{})
	for name, cmd := range src.ActionTable().Commands() {
		if cmd.Filter().Permits(ch) {
			names[name] = struct{}{}
		}
	}
	return names
}

// collisionSet returns the verb names src shares with at least one
// co-located source, for ch. Membership is a pure function of the
// currently co-located sources, which is what lets revocation recompute
// the exact keys used at grant time: the co-location set has not yet
// changed when a removal runs.
//
// A deliberate consequence: a source that arrives later does not force
// already-registered sources to be renamed. First come, first served
// on the plain verb name.
func collisionSet(src Source, ch *Character) map[string]struct{} {
	mine := permittedNames(src, ch)
	collisions := make(map[string]struct{})
	for _, other := range src.colocated(ch) {
		for name := range permittedNames(other, ch) {
			if _, shared := mine[name]; shared {
				collisions[name] = struct{}{}
			}
		}
	}
	return collisions
}

// registrationKey returns the shadow-table key a verb registers under:
// the plain name, or "name-source" when another co-located source
// offers the same verb.
func registrationKey(name string, src Source, collisions map[string]struct{}) string {
	if _, clash := collisions[name]; clash {
		return fmt.Sprintf("%s-%s", name, src.SourceName())
	}
	return name
}

// grantCommands registers src's permitted commands into ch's live
// table, binding src and ch into each descriptor.
func grantCommands(src Source, ch *Character) {
	collisions := collisionSet(src, ch)
	table := src.ActionTable().Commands()
	for _, name := range sortedNames(table) {
		cmd := table[name]
		if !cmd.Filter().Permits(ch) {
			continue
		}
		ch.commands.Set(registrationKey(name, src, collisions), cmd.Specify(src, ch))
	}
}

// revokeCommands removes exactly what grantCommands registered,
// re-deriving each bound descriptor and removing it by value so the
// order of removals does not have to mirror the order of grants.
func revokeCommands(src Source, ch *Character) error {
	collisions := collisionSet(src, ch)
	table := src.ActionTable().Commands()
	var errs []error
	for _, name := range sortedNames(table) {
		cmd := table[name]
		if !cmd.Filter().Permits(ch) {
			continue
		}
		key := registrationKey(name, src, collisions)
		if err := ch.commands.RemoveValue(key, cmd.Specify(src, ch)); err != nil {
			errs = append(errs, fmt.Errorf("mud: revoke %q from %s (source %s): %w",
				key, ch, src.SourceName(), err))
		}
	}
	return errors.Join(errs...)
}

func sortedNames(table map[string]*Command) []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
