package modulelib

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/bundlelib"
	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

type validator struct {
	lib *Library
	m   *model.Module
	// values holds the evaluated local configs once phase 2 has run.
	values map[string]int64
}

func newValidator(lib *Library, m *model.Module) *validator {
	return &validator{lib: lib, m: m, values: make(map[string]int64)}
}

func (v *validator) phases() []func() error {
	return []func() error{
		v.checkIndex,
		v.checkNames,
		v.checkDefinitions,
		v.checkInstances,
		v.checkReqServ,
		v.checkPipes,
		v.checkSequence,
	}
}

func (v *validator) errorf(code vulerr.Code, format string, args ...any) error {
	return vulerr.New(code, "module %q: %s", v.m.Name, fmt.Sprintf(format, args...))
}

func (v *validator) wrapf(code vulerr.Code, cause error, format string, args ...any) error {
	return vulerr.Wrap(code, cause, "module %q: %s", v.m.Name, fmt.Sprintf(format, args...))
}

// sortedKeys returns the keys of a name-keyed collection in lexical order.
func sortedKeys[T any](items map[string]T) []string {
	out := make([]string, 0, len(items))
	for k := range items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func checkKeys[T any](v *validator, kind string, items map[string]T, name func(T) string) error {
	for _, key := range sortedKeys(items) {
		if got := name(items[key]); got != key {
			return v.errorf(vulerr.BrokenIndex, "%s stored under %q is named %q", kind, key, got)
		}
	}
	return nil
}

// checkIndex is phase 0.
func (v *validator) checkIndex() error {
	m := v.m
	bundleName := func(b model.BundleItem) string { return b.Name }
	portName := func(r model.ReqServ) string { return r.Name }
	pipeName := func(p model.PipePort) string { return p.Name }
	memberName := func(s model.BundleMember) string { return s.Name }

	checks := []func() error{
		func() error { return checkKeys(v, "local bundle", m.LocalBundles, bundleName) },
		func() error { return checkKeys(v, "request", m.Requests, portName) },
		func() error { return checkKeys(v, "service", m.Services, portName) },
		func() error { return checkKeys(v, "pipe input", m.PipeInputs, pipeName) },
		func() error { return checkKeys(v, "pipe output", m.PipeOutputs, pipeName) },
		func() error {
			return checkKeys(v, "instance", m.Instances, func(i model.Instance) string { return i.Name })
		},
		func() error {
			return checkKeys(v, "pipe instance", m.PipeInstances, func(p model.PipeInstance) string { return p.Name })
		},
		func() error { return checkKeys(v, "storage", m.Storages, memberName) },
		func() error { return checkKeys(v, "next storage", m.StorageNexts, memberName) },
		func() error { return checkKeys(v, "tmp storage", m.StorageTmps, memberName) },
		func() error {
			return checkKeys(v, "tick code", m.TickCodes, func(c model.TickCode) string { return c.Name })
		},
		func() error {
			return checkKeys(v, "service code", m.ServiceCodes, func(c model.ServiceCode) string { return c.Service })
		},
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type localName struct {
	kind string
	name string
}

func (v *validator) localNames() []localName {
	m := v.m
	var out []localName
	for _, c := range m.LocalConfigs {
		out = append(out, localName{"local config", c.Name})
	}
	add := func(kind string, names []string) {
		for _, n := range names {
			out = append(out, localName{kind, n})
		}
	}
	add("local bundle", sortedKeys(m.LocalBundles))
	add("request", sortedKeys(m.Requests))
	add("service", sortedKeys(m.Services))
	add("pipe input", sortedKeys(m.PipeInputs))
	add("pipe output", sortedKeys(m.PipeOutputs))
	add("instance", sortedKeys(m.Instances))
	add("pipe instance", sortedKeys(m.PipeInstances))
	add("tick code", sortedKeys(m.TickCodes))
	add("storage", sortedKeys(m.Storages))
	add("next storage", sortedKeys(m.StorageNexts))
	add("tmp storage", sortedKeys(m.StorageTmps))
	return out
}

// checkNames is phase 1.
func (v *validator) checkNames() error {
	seen := make(map[string]string)
	for _, ln := range v.localNames() {
		if !expr.IsIdentifier(ln.name) || ln.name == model.TopInterface {
			return v.errorf(vulerr.InvalidIdentifier, "%s name %q is not a valid identifier", ln.kind, ln.name)
		}
		if v.lib.configs != nil && v.lib.configs.Has(ln.name) {
			return v.errorf(vulerr.GlobalNameConflict, "%s %q conflicts with config item %q", ln.kind, ln.name, ln.name)
		}
		if v.lib.bundles != nil && v.lib.bundles.Has(ln.name) {
			return v.errorf(vulerr.GlobalNameConflict, "%s %q conflicts with bundle %q", ln.kind, ln.name, ln.name)
		}
		if v.lib.Has(ln.name) {
			return v.errorf(vulerr.GlobalNameConflict, "%s %q conflicts with module %q", ln.kind, ln.name, ln.name)
		}
		if prev, ok := seen[ln.name]; ok {
			return v.errorf(vulerr.LocalNameConflict, "%s %q conflicts with %s %q", ln.kind, ln.name, prev, ln.name)
		}
		seen[ln.name] = ln.kind
	}
	return nil
}

// evaluate resolves src against the local config values and the globals.
func (v *validator) evaluate(src string) (int64, error) {
	if v.lib.configs == nil {
		return expr.EvalString(src, func(name string) (int64, error) {
			if x, ok := v.values[name]; ok {
				return x, nil
			}
			return 0, fmt.Errorf("undefined config identifier %q", name)
		})
	}
	return v.lib.configs.Evaluate(src, v.values, nil)
}

func (v *validator) isLocalBundle(name string) bool {
	_, ok := v.m.LocalBundles[name]
	return ok
}

func (v *validator) knownBundle(name string) bool {
	if v.isLocalBundle(name) {
		return true
	}
	return v.lib.bundles != nil && v.lib.bundles.Has(name)
}

func (v *validator) knownType(t string) bool {
	return model.IsBasicType(t) || v.knownBundle(t)
}

func (v *validator) configDefined(name string) bool {
	if _, ok := v.values[name]; ok {
		return true
	}
	return v.lib.configs != nil && v.lib.configs.Has(name)
}

func (v *validator) undefinedConfig(confs map[string]struct{}) string {
	for _, c := range sortedKeys(confs) {
		if !v.configDefined(c) {
			return c
		}
	}
	return ""
}

// checkDefinitions is phase 2.
func (v *validator) checkDefinitions() error {
	steps := []func() error{
		v.checkLocalConfigs,
		v.checkLocalBundles,
		v.checkStorages,
		v.checkPortTypes,
		v.checkPipeInstances,
		v.checkOverrideExprs,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkLocalConfigs() error {
	for _, c := range v.m.LocalConfigs {
		x, err := v.evaluate(c.Value)
		if err != nil {
			return v.wrapf(vulerr.LocalConfigInvalid, err, "local config %q", c.Name)
		}
		v.values[c.Name] = x
	}
	return nil
}

func (v *validator) checkLocalBundles() error {
	edges := make(map[string]map[string]struct{})
	for _, name := range sortedKeys(v.m.LocalBundles) {
		item := v.m.LocalBundles[name]
		refs, confs, err := bundlelib.CheckItem(item, v.knownBundle)
		if err != nil {
			if vulerr.Is(err, vulerr.BundleCircular) {
				return v.wrapf(vulerr.LocalBundleCircular, err, "local bundle %q", name)
			}
			return v.wrapf(vulerr.LocalBundleInvalid, err, "local bundle %q", name)
		}
		if c := v.undefinedConfig(confs); c != "" {
			return v.errorf(vulerr.LocalBundleInvalid, "local bundle %q references undefined config %q", name, c)
		}
		for _, em := range item.EnumMembers {
			if em.Value == "" {
				continue
			}
			if _, err := v.evaluate(em.Value); err != nil {
				return v.wrapf(vulerr.LocalBundleInvalid, err, "local bundle %q enum member %q", name, em.Name)
			}
		}
		for ref := range refs {
			if !v.isLocalBundle(ref) {
				continue
			}
			if edges[ref] == nil {
				edges[ref] = make(map[string]struct{})
			}
			edges[ref][name] = struct{}{}
		}
	}

	if _, err := dag.Sort(sortedKeys(v.m.LocalBundles), edges); err != nil {
		if ce, ok := err.(*dag.CycleError); ok {
			return v.errorf(vulerr.LocalBundleCircular, "local bundles have circular references: %s", strings.Join(ce.Nodes, ", "))
		}
		return err
	}
	return nil
}

func (v *validator) checkStorages() error {
	groups := []struct {
		kind  string
		items map[string]model.BundleMember
	}{
		{"storage", v.m.Storages},
		{"next storage", v.m.StorageNexts},
		{"tmp storage", v.m.StorageTmps},
	}
	for _, g := range groups {
		for _, name := range sortedKeys(g.items) {
			owner := fmt.Sprintf("%s %q", g.kind, name)
			_, confs, err := bundlelib.CheckMember(owner, g.items[name], v.knownBundle)
			if err != nil {
				return v.wrapf(vulerr.StorageInvalid, err, "%s", owner)
			}
			if c := v.undefinedConfig(confs); c != "" {
				return v.errorf(vulerr.StorageInvalid, "%s references undefined config %q", owner, c)
			}
		}
	}
	return nil
}

func (v *validator) checkPortTypes() error {
	checkArgs := func(kind, port string, args []model.Argument) error {
		for _, a := range args {
			if !v.knownType(a.Type) {
				return v.errorf(vulerr.UnknownType, "%s %q argument %q has unknown type %q", kind, port, a.Name, a.Type)
			}
		}
		return nil
	}
	for _, ports := range []struct {
		kind  string
		items map[string]model.ReqServ
	}{{"request", v.m.Requests}, {"service", v.m.Services}} {
		for _, name := range sortedKeys(ports.items) {
			p := ports.items[name]
			if err := checkArgs(ports.kind, name, p.Args); err != nil {
				return err
			}
			if err := checkArgs(ports.kind, name, p.Rets); err != nil {
				return err
			}
		}
	}
	for _, pipes := range []struct {
		kind  string
		items map[string]model.PipePort
	}{{"pipe input", v.m.PipeInputs}, {"pipe output", v.m.PipeOutputs}} {
		for _, name := range sortedKeys(pipes.items) {
			if t := pipes.items[name].Type; !v.knownType(t) {
				return v.errorf(vulerr.UnknownType, "%s %q has unknown type %q", pipes.kind, name, t)
			}
		}
	}
	return nil
}

func (v *validator) checkPipeInstances() error {
	for _, name := range sortedKeys(v.m.PipeInstances) {
		p := v.m.PipeInstances[name]
		if !v.knownType(p.Type) {
			return v.errorf(vulerr.PipeInstanceInvalid, "pipe instance %q has unknown type %q", name, p.Type)
		}
		fields := []struct{ what, src string }{
			{"input size", p.InputSize},
			{"output size", p.OutputSize},
			{"buffer size", p.BufferSize},
			{"latency", p.Latency},
		}
		for _, f := range fields {
			if f.src == "" {
				continue
			}
			x, err := v.evaluate(f.src)
			if err != nil {
				return v.wrapf(vulerr.PipeInstanceInvalid, err, "pipe instance %q %s", name, f.what)
			}
			if x < 0 {
				return v.errorf(vulerr.PipeInstanceInvalid, "pipe instance %q %s is negative (%d)", name, f.what, x)
			}
		}
	}
	return nil
}

func (v *validator) checkOverrideExprs() error {
	for _, name := range sortedKeys(v.m.Instances) {
		inst := v.m.Instances[name]
		for _, key := range sortedKeys(inst.Overrides) {
			if _, err := v.evaluate(inst.Overrides[key]); err != nil {
				return v.wrapf(vulerr.OverrideInvalid, err, "instance %q override %q", name, key)
			}
		}
	}
	return nil
}

// checkInstances is phase 3.
func (v *validator) checkInstances() error {
	for _, name := range sortedKeys(v.m.Instances) {
		inst := v.m.Instances[name]
		if inst.Module == v.m.Name {
			return v.errorf(vulerr.ModuleCircular, "instance %q instantiates its own module", name)
		}
		child, ok := v.lib.modules[inst.Module]
		if !ok {
			return v.errorf(vulerr.InstanceModuleMissing, "instance %q refers to unknown module %q%s",
				name, inst.Module, vulerr.DidYouMean(inst.Module, v.lib.Names()))
		}
		for _, key := range sortedKeys(inst.Overrides) {
			if _, ok := child.LocalConfig(key); !ok {
				return v.errorf(vulerr.OverrideUnknown, "instance %q overrides %q, which is not a local config of module %q",
					name, key, inst.Module)
			}
		}
	}
	return nil
}

func (v *validator) child(instance string) (*model.Module, bool) {
	inst, ok := v.m.Instances[instance]
	if !ok {
		return nil, false
	}
	m, ok := v.lib.modules[inst.Module]
	return m, ok
}
