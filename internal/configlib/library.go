// Package configlib owns the global config items of a design: named integer
// constants defined by expressions over each other.
//
// The library keeps, for every item, the set of items its expression
// references and the transpose of that set. Every mutation validates the
// complete resulting state before it is applied, so the reference graph is
// always acyclic and every cached value is current.
package configlib

import (
	"sort"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Entry is the library's record of one config item.
type Entry struct {
	Item model.ConfigItem
	// RealValue is the evaluated value of Item.Value.
	RealValue int64
	// References are the config names Item.Value mentions.
	References map[string]struct{}
	// ReverseReferences are the config names whose values mention this item.
	ReverseReferences map[string]struct{}
}

func (e *Entry) clone() *Entry {
	out := *e
	out.References = copySet(e.References)
	out.ReverseReferences = copySet(e.ReverseReferences)
	return &out
}

// RenameObserver is notified of config renames and asked about references
// held outside the library, such as bundle member lengths or module override
// expressions.
type RenameObserver interface {
	// ExternalConfigRename rewrites every reference to oldName.
	ExternalConfigRename(oldName, newName string)
	// ExternalConfigReferenced returns the names of entities that reference
	// the config, sorted, or nil.
	ExternalConfigReferenced(name string) []string
}

// Library is the global config item library. It is not safe for concurrent
// use.
type Library struct {
	entries   map[string]*Entry
	observers []RenameObserver
}

// New returns an empty library.
func New() *Library {
	return &Library{entries: make(map[string]*Entry)}
}

// Observe registers o for rename notifications and reference queries.
func (l *Library) Observe(o RenameObserver) {
	l.observers = append(l.observers, o)
}

// Has reports whether name is a config item.
func (l *Library) Has(name string) bool {
	_, ok := l.entries[name]
	return ok
}

// Get returns the config item called name.
func (l *Library) Get(name string) (model.ConfigItem, error) {
	e, err := l.entry(name)
	if err != nil {
		return model.ConfigItem{}, err
	}
	return e.Item, nil
}

// Value returns the evaluated value of the config item called name.
func (l *Library) Value(name string) (int64, error) {
	e, err := l.entry(name)
	if err != nil {
		return 0, err
	}
	return e.RealValue, nil
}

// References returns the sorted names the item's value references.
func (l *Library) References(name string) ([]string, error) {
	e, err := l.entry(name)
	if err != nil {
		return nil, err
	}
	return sortedSet(e.References), nil
}

// ReverseReferences returns the sorted names of items referencing name.
func (l *Library) ReverseReferences(name string) ([]string, error) {
	e, err := l.entry(name)
	if err != nil {
		return nil, err
	}
	return sortedSet(e.ReverseReferences), nil
}

// Names returns every config name, sorted.
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.entries))
	for name := range l.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Items returns every config item sorted by name.
func (l *Library) Items() []model.ConfigItem {
	names := l.Names()
	out := make([]model.ConfigItem, 0, len(names))
	for _, name := range names {
		out = append(out, l.entries[name].Item)
	}
	return out
}

// Groups returns the distinct group names, sorted. Ungrouped items are
// reported under the empty group.
func (l *Library) Groups() []string {
	seen := make(map[string]struct{})
	for _, e := range l.entries {
		seen[e.Item.Group] = struct{}{}
	}
	return sortedSet(seen)
}

// ListGroup returns the sorted names of the items in group.
func (l *Library) ListGroup(group string) []string {
	var out []string
	for name, e := range l.entries {
		if e.Item.Group == group {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// TopoOrder returns every config name ordered so that referenced items come
// before the items referencing them.
func (l *Library) TopoOrder() ([]string, error) {
	return topoOrder(l.entries)
}

func topoOrder(entries map[string]*Entry) ([]string, error) {
	nodes := make([]string, 0, len(entries))
	edges := make(map[string]map[string]struct{}, len(entries))
	for name, e := range entries {
		nodes = append(nodes, name)
		edges[name] = e.ReverseReferences
	}
	order, err := dag.Sort(nodes, edges)
	if err != nil {
		if ce, ok := err.(*dag.CycleError); ok {
			return nil, vulerr.New(vulerr.ConfigCircular, "Config items have circular references: %s", strings.Join(ce.Nodes, ", "))
		}
		return nil, vulerr.Wrap(vulerr.BrokenIndex, err, "config ordering failed")
	}
	return order, nil
}

func (l *Library) entry(name string) (*Entry, error) {
	e, ok := l.entries[name]
	if !ok {
		return nil, vulerr.New(vulerr.ConfigNotFound, "config item %q not found%s", name, vulerr.DidYouMean(name, l.Names()))
	}
	return e, nil
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func sortedSet(in map[string]struct{}) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// referencesOf validates src and returns the identifiers it mentions.
func referencesOf(name, src string) (map[string]struct{}, error) {
	refs, err := expr.ExtractIdentifiers(src)
	if err != nil {
		return nil, vulerr.Wrap(vulerr.ConfigExprInvalid, err, "config item %q has an invalid value %q", name, src)
	}
	return refs, nil
}
