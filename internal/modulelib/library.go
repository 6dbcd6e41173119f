// Package modulelib owns the module definitions of a design and validates
// them.
//
// Validation runs seven phases in a fixed order. Each phase assumes the
// invariants established by the phases before it, so the first failing
// phase ends the run:
//
//	0. broken index     every keyed collection agrees with its item names
//	1. names            local names are valid, unique and not global
//	2. definitions      local configs, local bundles, storages, port types,
//	                    pipe instances and override expressions
//	3. instances        child modules and overridden configs exist
//	4. request/service  endpoints resolve, signatures match, multiplicity
//	5. pipes            endpoints resolve, types match, every child port once
//	6. sequence         stall and update-sequence graphs are acyclic
package modulelib

import (
	"sort"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Configs is the read-only view of the global config library the modules
// need.
type Configs interface {
	Has(name string) bool
	Evaluate(src string, overrides map[string]int64, visited map[string]struct{}) (int64, error)
}

// Bundles is the read-only view of the global bundle library the modules
// need.
type Bundles interface {
	Has(name string) bool
}

// Library is the module library. It is not safe for concurrent use.
type Library struct {
	modules map[string]*model.Module
	configs Configs
	bundles Bundles
}

// New returns an empty module library resolving global names through
// configs and bundles.
func New(configs Configs, bundles Bundles) *Library {
	return &Library{
		modules: make(map[string]*model.Module),
		configs: configs,
		bundles: bundles,
	}
}

// Has reports whether name is a module.
func (l *Library) Has(name string) bool {
	_, ok := l.modules[name]
	return ok
}

// Get returns the module called name. The library keeps ownership; callers
// must not modify the result.
func (l *Library) Get(name string) (*model.Module, error) {
	m, ok := l.modules[name]
	if !ok {
		return nil, vulerr.New(vulerr.ModuleNotFound, "module %q not found%s", name, vulerr.DidYouMean(name, l.Names()))
	}
	return m, nil
}

// Names returns every module name, sorted.
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.modules))
	for name := range l.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LocalNameUsers lists the modules declaring a local entity called name,
// as "module M (kind)", sorted by module.
func (l *Library) LocalNameUsers(name string) []string {
	var out []string
	for _, modName := range l.Names() {
		for _, ln := range newValidator(l, l.modules[modName]).localNames() {
			if ln.name == name {
				out = append(out, "module "+modName+" ("+ln.kind+")")
				break
			}
		}
	}
	return out
}

// Add inserts a module. Its children need not exist yet; Validate checks
// them.
func (l *Library) Add(m *model.Module) error {
	if !expr.IsIdentifier(m.Name) {
		return vulerr.New(vulerr.ModuleInvalidName, "invalid module name %q", m.Name)
	}
	if l.Has(m.Name) {
		return vulerr.New(vulerr.ModuleExists, "module %q already exists", m.Name)
	}
	if l.configs != nil && l.configs.Has(m.Name) {
		return vulerr.New(vulerr.GlobalNameConflict, "module %q conflicts with config item %q", m.Name, m.Name)
	}
	if l.bundles != nil && l.bundles.Has(m.Name) {
		return vulerr.New(vulerr.GlobalNameConflict, "module %q conflicts with bundle %q", m.Name, m.Name)
	}
	l.modules[m.Name] = m
	if _, err := l.TopoOrder(); err != nil {
		delete(l.modules, m.Name)
		return err
	}
	return nil
}

// Load adds a batch of modules given in any order.
func (l *Library) Load(modules []*model.Module) error {
	var added []string
	for _, m := range modules {
		if err := l.Add(m); err != nil {
			for _, name := range added {
				delete(l.modules, name)
			}
			return err
		}
		added = append(added, m.Name)
	}
	return nil
}

// Replace swaps the definition of an existing module.
func (l *Library) Replace(m *model.Module) error {
	prev, err := l.Get(m.Name)
	if err != nil {
		return err
	}
	l.modules[m.Name] = m
	if _, err := l.TopoOrder(); err != nil {
		l.modules[m.Name] = prev
		return err
	}
	return nil
}

// Remove deletes a module no other module instantiates.
func (l *Library) Remove(name string) error {
	if _, err := l.Get(name); err != nil {
		return err
	}
	if users := l.instantiators(name); len(users) > 0 {
		return vulerr.New(vulerr.ModuleStillReferenced, "module %q is still instantiated by: %s", name, strings.Join(users, ", "))
	}
	delete(l.modules, name)
	return nil
}

// TopoOrder returns every module name ordered so that a module comes after
// every module it instantiates. Instances of unknown modules are ignored.
func (l *Library) TopoOrder() ([]string, error) {
	nodes := make([]string, 0, len(l.modules))
	edges := make(map[string]map[string]struct{})
	for name, m := range l.modules {
		nodes = append(nodes, name)
		for child := range m.ChildModules() {
			if edges[child] == nil {
				edges[child] = make(map[string]struct{})
			}
			edges[child][name] = struct{}{}
		}
	}
	order, err := dag.Sort(nodes, edges)
	if err != nil {
		if ce, ok := err.(*dag.CycleError); ok {
			return nil, vulerr.New(vulerr.ModuleCircular, "Modules have circular instantiations: %s", strings.Join(ce.Nodes, ", "))
		}
		return nil, vulerr.Wrap(vulerr.BrokenIndex, err, "module ordering failed")
	}
	return order, nil
}

// Validate runs every validation phase on the module called name.
func (l *Library) Validate(name string) error {
	m, err := l.Get(name)
	if err != nil {
		return err
	}
	return l.ValidateModule(m)
}

// ValidateModule runs every validation phase on m, which need not be part of
// the library.
func (l *Library) ValidateModule(m *model.Module) error {
	v := newValidator(l, m)
	for _, phase := range v.phases() {
		if err := phase(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) instantiators(name string) []string {
	var out []string
	for parent, m := range l.modules {
		if _, ok := m.ChildModules()[name]; ok && parent != name {
			out = append(out, parent)
		}
	}
	sort.Strings(out)
	return out
}
