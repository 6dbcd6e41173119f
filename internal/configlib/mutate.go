package configlib

import (
	"strings"

	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Add inserts a new config item. Every item its value references must
// already exist.
func (l *Library) Add(item model.ConfigItem) error {
	return l.Load([]model.ConfigItem{item})
}

// Load inserts a batch of new config items given in any order. Items of the
// batch may reference each other. Either every item is added or none is.
func (l *Library) Load(items []model.ConfigItem) error {
	staged := l.stage()
	names := make([]string, 0, len(items))
	for _, item := range items {
		if err := checkName(item.Name); err != nil {
			return err
		}
		if _, ok := staged[item.Name]; ok {
			return vulerr.New(vulerr.ConfigExists, "config item %q already exists", item.Name)
		}
		refs, err := referencesOf(item.Name, item.Value)
		if err != nil {
			return err
		}
		staged[item.Name] = &Entry{
			Item:              item,
			References:        refs,
			ReverseReferences: make(map[string]struct{}),
		}
		names = append(names, item.Name)
	}
	for _, name := range names {
		if err := link(staged, name); err != nil {
			return err
		}
	}
	if err := recompute(staged, names); err != nil {
		return err
	}
	l.entries = staged
	return nil
}

// UpdateValue replaces the value expression of an existing item and
// re-evaluates every item that depends on it.
func (l *Library) UpdateValue(name, value string) error {
	if _, err := l.entry(name); err != nil {
		return err
	}
	refs, err := referencesOf(name, value)
	if err != nil {
		return err
	}

	staged := l.stage()
	e := staged[name]
	for ref := range e.References {
		if r, ok := staged[ref]; ok {
			delete(r.ReverseReferences, name)
		}
	}
	e.Item.Value = value
	e.References = refs
	if err := link(staged, name); err != nil {
		return err
	}
	if err := recompute(staged, []string{name}); err != nil {
		return err
	}
	l.entries = staged
	return nil
}

// UpdateComment replaces the comment of an existing item.
func (l *Library) UpdateComment(name, comment string) error {
	e, err := l.entry(name)
	if err != nil {
		return err
	}
	e.Item.Comment = comment
	return nil
}

// SetGroup moves an existing item to group.
func (l *Library) SetGroup(name, group string) error {
	e, err := l.entry(name)
	if err != nil {
		return err
	}
	e.Item.Group = group
	return nil
}

// Rename renames an item, rewrites every config expression that references
// it and notifies the registered observers.
func (l *Library) Rename(oldName, newName string) error {
	if _, err := l.entry(oldName); err != nil {
		return err
	}
	if err := checkName(newName); err != nil {
		return err
	}
	if l.Has(newName) {
		return vulerr.New(vulerr.ConfigExists, "config item %q already exists", newName)
	}

	staged := l.stage()
	e := staged[oldName]
	delete(staged, oldName)
	e.Item.Name = newName
	staged[newName] = e

	for user := range e.ReverseReferences {
		u := staged[user]
		u.Item.Value, _ = expr.RenameIdentifier(u.Item.Value, oldName, newName)
		delete(u.References, oldName)
		u.References[newName] = struct{}{}
	}
	for ref := range e.References {
		r := staged[ref]
		delete(r.ReverseReferences, oldName)
		r.ReverseReferences[newName] = struct{}{}
	}

	l.entries = staged
	for _, o := range l.observers {
		o.ExternalConfigRename(oldName, newName)
	}
	return nil
}

// Remove deletes an item nothing references any more.
func (l *Library) Remove(name string) error {
	e, err := l.entry(name)
	if err != nil {
		return err
	}
	if len(e.ReverseReferences) > 0 {
		return vulerr.New(vulerr.ConfigStillReferenced, "config item %q is still referenced by: %s",
			name, strings.Join(sortedSet(e.ReverseReferences), ", "))
	}
	for _, o := range l.observers {
		if users := o.ExternalConfigReferenced(name); len(users) > 0 {
			return vulerr.New(vulerr.ConfigStillReferenced, "config item %q is still referenced by: %s",
				name, strings.Join(users, ", "))
		}
	}

	for ref := range e.References {
		if r, ok := l.entries[ref]; ok {
			delete(r.ReverseReferences, name)
		}
	}
	delete(l.entries, name)
	return nil
}

func (l *Library) stage() map[string]*Entry {
	out := make(map[string]*Entry, len(l.entries))
	for name, e := range l.entries {
		out[name] = e.clone()
	}
	return out
}

func checkName(name string) error {
	if !expr.IsIdentifier(name) {
		return vulerr.New(vulerr.ConfigInvalidName, "invalid config name %q", name)
	}
	return nil
}

// link records name in the reverse references of everything it references.
func link(entries map[string]*Entry, name string) error {
	e := entries[name]
	for ref := range e.References {
		if ref == name {
			return vulerr.New(vulerr.ConfigCircular, "config item %q references itself", name)
		}
		r, ok := entries[ref]
		if !ok {
			return vulerr.New(vulerr.ConfigUndefined, "config item %q references undefined config %q%s",
				name, ref, vulerr.DidYouMean(ref, keys(entries)))
		}
		r.ReverseReferences[name] = struct{}{}
	}
	return nil
}

// recompute re-evaluates changed and everything depending on it, in
// dependency order.
func recompute(entries map[string]*Entry, changed []string) error {
	affected := make(map[string]struct{})
	queue := append([]string(nil), changed...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := affected[name]; ok {
			continue
		}
		affected[name] = struct{}{}
		for user := range entries[name].ReverseReferences {
			queue = append(queue, user)
		}
	}

	order, err := topoOrder(entries)
	if err != nil {
		return err
	}
	for _, name := range order {
		if _, ok := affected[name]; !ok {
			continue
		}
		e := entries[name]
		v, err := evaluate(entries, e.Item.Value, nil, nil)
		if err != nil {
			return err
		}
		e.RealValue = v
	}
	return nil
}

func keys(entries map[string]*Entry) []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	return out
}
