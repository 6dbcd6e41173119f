// Package bundlelib owns the global bundle definitions of a design and the
// reference graph between them.
//
// Every bundle is filed under one or more tags. A bundle disappears only when
// its last tag is removed and nothing refers to it any more. Bundle-to-bundle
// references (member types) must stay acyclic; bundle-to-config references
// (lengths, dimensions, defaults and enum values) are indexed so that config
// renames can be pushed into the bundle definitions.
package bundlelib

import (
	"sort"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// DefaultTag is used for bundles inserted without a tag.
const DefaultTag = "default"

// Entry is the library's record of one bundle.
type Entry struct {
	Item model.BundleItem
	Tags map[string]struct{}
	// References are the bundles named as member types.
	References map[string]struct{}
	// ReverseReferences are the bundles using this one as a member type.
	ReverseReferences map[string]struct{}
	// Confs are the config names used in lengths, dimensions, defaults and
	// enum values.
	Confs map[string]struct{}
}

func (e *Entry) clone() *Entry {
	return &Entry{
		Item:              e.Item.Clone(),
		Tags:              copySet(e.Tags),
		References:        copySet(e.References),
		ReverseReferences: copySet(e.ReverseReferences),
		Confs:             copySet(e.Confs),
	}
}

// ConfigChecker reports whether a global config item exists.
type ConfigChecker interface {
	Has(name string) bool
}

// Observer is notified of bundle renames and asked about references held
// outside the library, such as module ports and storages.
type Observer interface {
	ExternalBundleRename(oldName, newName string)
	ExternalBundleReferenced(name string) []string
}

type state struct {
	bundles     map[string]*Entry
	tagBundles  map[string]map[string]struct{}
	confBundles map[string]map[string]struct{}
}

func newState() *state {
	return &state{
		bundles:     make(map[string]*Entry),
		tagBundles:  make(map[string]map[string]struct{}),
		confBundles: make(map[string]map[string]struct{}),
	}
}

func (s *state) clone() *state {
	out := &state{
		bundles:     make(map[string]*Entry, len(s.bundles)),
		tagBundles:  make(map[string]map[string]struct{}, len(s.tagBundles)),
		confBundles: make(map[string]map[string]struct{}, len(s.confBundles)),
	}
	for name, e := range s.bundles {
		out.bundles[name] = e.clone()
	}
	for tag, set := range s.tagBundles {
		out.tagBundles[tag] = copySet(set)
	}
	for conf, set := range s.confBundles {
		out.confBundles[conf] = copySet(set)
	}
	return out
}

// Library is the global bundle library. It is not safe for concurrent use.
type Library struct {
	cur       *state
	snapshots map[int]*state
	nextID    int

	configs   ConfigChecker
	observers []Observer
}

// New returns an empty library. When configs is non-nil every config name a
// bundle mentions must exist in it.
func New(configs ConfigChecker) *Library {
	return &Library{
		cur:       newState(),
		snapshots: make(map[int]*state),
		configs:   configs,
	}
}

// Observe registers o for rename notifications and reference queries.
func (l *Library) Observe(o Observer) {
	l.observers = append(l.observers, o)
}

// Has reports whether name is a bundle.
func (l *Library) Has(name string) bool {
	_, ok := l.cur.bundles[name]
	return ok
}

// Get returns a copy of the bundle called name.
func (l *Library) Get(name string) (model.BundleItem, error) {
	e, err := l.entry(name)
	if err != nil {
		return model.BundleItem{}, err
	}
	return e.Item.Clone(), nil
}

// Names returns every bundle name, sorted.
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.cur.bundles))
	for name := range l.cur.bundles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tags returns the sorted tags of the bundle called name.
func (l *Library) Tags(name string) ([]string, error) {
	e, err := l.entry(name)
	if err != nil {
		return nil, err
	}
	return sortedSet(e.Tags), nil
}

// AllTags returns every tag in use, sorted.
func (l *Library) AllTags() []string {
	return sortedSet(l.cur.tagBundles)
}

// TagBundles returns the sorted names of the bundles filed under tag.
func (l *Library) TagBundles(tag string) []string {
	return sortedSet(l.cur.tagBundles[tag])
}

// References returns the sorted bundle names the bundle uses as member types.
func (l *Library) References(name string) ([]string, error) {
	e, err := l.entry(name)
	if err != nil {
		return nil, err
	}
	return sortedSet(e.References), nil
}

// ConfigReferences returns the sorted config names the bundle mentions.
func (l *Library) ConfigReferences(name string) ([]string, error) {
	e, err := l.entry(name)
	if err != nil {
		return nil, err
	}
	return sortedSet(e.Confs), nil
}

// Items returns every bundle with its tags, sorted by name.
func (l *Library) Items() []model.TaggedBundle {
	names := l.Names()
	out := make([]model.TaggedBundle, 0, len(names))
	for _, name := range names {
		e := l.cur.bundles[name]
		out = append(out, model.TaggedBundle{Item: e.Item.Clone(), Tags: sortedSet(e.Tags)})
	}
	return out
}

// ExternalConfigReferenced returns the sorted names of the bundles whose
// expressions mention the config item called name.
func (l *Library) ExternalConfigReferenced(name string) []string {
	set := l.cur.confBundles[name]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, "bundle "+b)
	}
	sort.Strings(out)
	return out
}

// TopoSort returns every bundle name ordered so that a bundle comes after
// every bundle it uses as a member type.
func (l *Library) TopoSort() ([]string, error) {
	return topoSort(l.cur)
}

func topoSort(s *state) ([]string, error) {
	nodes := make([]string, 0, len(s.bundles))
	edges := make(map[string]map[string]struct{}, len(s.bundles))
	for name, e := range s.bundles {
		nodes = append(nodes, name)
		edges[name] = e.ReverseReferences
	}
	order, err := dag.Sort(nodes, edges)
	if err != nil {
		if ce, ok := err.(*dag.CycleError); ok {
			return nil, vulerr.New(vulerr.BundleCircular, "Bundles have circular references: %s", strings.Join(ce.Nodes, ", "))
		}
		return nil, vulerr.Wrap(vulerr.BrokenIndex, err, "bundle ordering failed")
	}
	return order, nil
}

func (l *Library) entry(name string) (*Entry, error) {
	e, ok := l.cur.bundles[name]
	if !ok {
		return nil, vulerr.New(vulerr.BundleNotFound, "bundle %q not found%s", name, vulerr.DidYouMean(name, l.Names()))
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

func sortedSet[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
