package bundlelib

import (
	"strings"

	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Insert files item under tag. Inserting a name that already exists is
// accepted only when the definitions are structurally identical; the tag is
// then added to the existing bundle.
func (l *Library) Insert(item model.BundleItem, tag string) error {
	if tag == "" {
		tag = DefaultTag
	}
	if e, ok := l.cur.bundles[item.Name]; ok {
		if !SameDefinition(e.Item, item) {
			return vulerr.New(vulerr.BundleConflict, "bundle %q already exists with a different definition", item.Name)
		}
		e.Tags[tag] = struct{}{}
		addTo(l.cur.tagBundles, tag, item.Name)
		return nil
	}

	refs, confs, err := CheckItem(item, l.Has)
	if err != nil {
		return err
	}
	if err := l.checkConfigs(item.Name, confs); err != nil {
		return err
	}

	l.cur.bundles[item.Name] = &Entry{
		Item:              item.Clone(),
		Tags:              map[string]struct{}{tag: {}},
		References:        refs,
		ReverseReferences: make(map[string]struct{}),
		Confs:             confs,
	}
	link(l.cur, item.Name)
	return nil
}

// Remove takes the bundle called name out of tag. The bundle itself is
// deleted once it has no tags left, which is refused while other bundles or
// observers still refer to it.
func (l *Library) Remove(name, tag string) error {
	if tag == "" {
		tag = DefaultTag
	}
	e, err := l.entry(name)
	if err != nil {
		return err
	}
	if _, ok := e.Tags[tag]; !ok {
		return vulerr.New(vulerr.BundleTagNotFound, "bundle %q is not tagged %q", name, tag)
	}

	if len(e.Tags) > 1 {
		delete(e.Tags, tag)
		removeFrom(l.cur.tagBundles, tag, name)
		return nil
	}

	if len(e.ReverseReferences) > 0 {
		return vulerr.New(vulerr.BundleStillReferenced, "bundle %q is still referenced by: %s",
			name, strings.Join(sortedSet(e.ReverseReferences), ", "))
	}
	for _, o := range l.observers {
		if users := o.ExternalBundleReferenced(name); len(users) > 0 {
			return vulerr.New(vulerr.BundleStillReferenced, "bundle %q is still referenced by: %s",
				name, strings.Join(users, ", "))
		}
	}
	unlink(l.cur, name)
	delete(l.cur.bundles, name)
	return nil
}

// Update replaces the definition of an existing bundle, keeping its tags.
func (l *Library) Update(item model.BundleItem) error {
	if _, err := l.entry(item.Name); err != nil {
		return err
	}
	refs, confs, err := CheckItem(item, l.Has)
	if err != nil {
		return err
	}
	if err := l.checkConfigs(item.Name, confs); err != nil {
		return err
	}

	staged := l.cur.clone()
	unlink(staged, item.Name)
	e := staged.bundles[item.Name]
	e.Item = item.Clone()
	e.References = refs
	e.Confs = confs
	link(staged, item.Name)
	if _, err := topoSort(staged); err != nil {
		return err
	}
	l.cur = staged
	return nil
}

// Rename renames a bundle, rewrites the member types of every bundle using
// it and notifies the registered observers.
func (l *Library) Rename(oldName, newName string) error {
	if _, err := l.entry(oldName); err != nil {
		return err
	}
	if !expr.IsIdentifier(newName) {
		return vulerr.New(vulerr.BundleInvalidName, "invalid bundle name %q", newName)
	}
	if l.Has(newName) {
		return vulerr.New(vulerr.BundleExists, "bundle %q already exists", newName)
	}

	staged := l.cur.clone()
	unlink(staged, oldName)
	e := staged.bundles[oldName]
	delete(staged.bundles, oldName)
	e.Item.Name = newName
	staged.bundles[newName] = e

	for user := range e.ReverseReferences {
		u := staged.bundles[user]
		for i := range u.Item.Members {
			if u.Item.Members[i].Type == oldName {
				u.Item.Members[i].Type = newName
			}
		}
		delete(u.References, oldName)
		u.References[newName] = struct{}{}
	}
	link(staged, newName)

	l.cur = staged
	for _, o := range l.observers {
		o.ExternalBundleRename(oldName, newName)
	}
	return nil
}

// ExternalConfigRename rewrites every bundle expression mentioning the config
// item oldName.
func (l *Library) ExternalConfigRename(oldName, newName string) {
	users := l.cur.confBundles[oldName]
	for name := range users {
		e := l.cur.bundles[name]
		renameInItem(&e.Item, oldName, newName)
		delete(e.Confs, oldName)
		e.Confs[newName] = struct{}{}
		addTo(l.cur.confBundles, newName, name)
	}
	delete(l.cur.confBundles, oldName)
}

func renameInItem(item *model.BundleItem, oldName, newName string) {
	for i := range item.Members {
		m := &item.Members[i]
		m.UintLength, _ = expr.RenameIdentifier(m.UintLength, oldName, newName)
		m.Value, _ = expr.RenameIdentifier(m.Value, oldName, newName)
		for j := range m.Dims {
			m.Dims[j], _ = expr.RenameIdentifier(m.Dims[j], oldName, newName)
		}
	}
	for i := range item.EnumMembers {
		em := &item.EnumMembers[i]
		em.Value, _ = expr.RenameIdentifier(em.Value, oldName, newName)
	}
}

// Load inserts a batch of tagged bundles given in any order. Bundles of the
// batch may use each other as member types. Either every bundle is inserted
// or none is.
func (l *Library) Load(items []model.TaggedBundle) error {
	byName := make(map[string][]model.TaggedBundle)
	var nodes []string
	for _, tb := range items {
		if _, ok := byName[tb.Item.Name]; !ok {
			nodes = append(nodes, tb.Item.Name)
		}
		byName[tb.Item.Name] = append(byName[tb.Item.Name], tb)
	}
	edges := make(map[string]map[string]struct{})
	for _, tb := range items {
		for _, t := range memberTypes(tb.Item) {
			if _, ok := byName[t]; ok && t != tb.Item.Name {
				addTo(edges, t, tb.Item.Name)
			}
		}
	}
	order, err := dag.Sort(nodes, edges)
	if err != nil {
		if ce, ok := err.(*dag.CycleError); ok {
			return vulerr.New(vulerr.BundleCircular, "Bundles have circular references: %s", strings.Join(ce.Nodes, ", "))
		}
		return err
	}

	id := l.Snapshot()
	for _, name := range order {
		for _, tb := range byName[name] {
			tags := tb.Tags
			if len(tags) == 0 {
				tags = []string{DefaultTag}
			}
			for _, tag := range tags {
				if err := l.Insert(tb.Item, tag); err != nil {
					_ = l.Rollback(id)
					return err
				}
			}
		}
	}
	return l.Commit(id)
}

func (l *Library) checkConfigs(bundle string, confs map[string]struct{}) error {
	if l.configs == nil {
		return nil
	}
	for _, c := range sortedSet(confs) {
		if !l.configs.Has(c) {
			return vulerr.New(vulerr.BundleUndefinedConfig, "bundle %q references undefined config %q", bundle, c)
		}
	}
	return nil
}

// link records the bundle in every index its entry implies.
func link(s *state, name string) {
	e := s.bundles[name]
	for ref := range e.References {
		if r, ok := s.bundles[ref]; ok {
			r.ReverseReferences[name] = struct{}{}
		}
	}
	for c := range e.Confs {
		addTo(s.confBundles, c, name)
	}
	for tag := range e.Tags {
		addTo(s.tagBundles, tag, name)
	}
}

// unlink is the inverse of link. The entry's own reverse references are kept.
func unlink(s *state, name string) {
	e := s.bundles[name]
	for ref := range e.References {
		if r, ok := s.bundles[ref]; ok {
			delete(r.ReverseReferences, name)
		}
	}
	for c := range e.Confs {
		removeFrom(s.confBundles, c, name)
	}
	for tag := range e.Tags {
		removeFrom(s.tagBundles, tag, name)
	}
}

func addTo(index map[string]map[string]struct{}, key, name string) {
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}
	set[name] = struct{}{}
}

func removeFrom(index map[string]map[string]struct{}, key, name string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, name)
	if len(set) == 0 {
		delete(index, key)
	}
}
