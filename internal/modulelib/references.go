package modulelib

import (
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
)

// walkExprs calls fn on every expression of m that is resolved against
// config items and stores the result back: local config values, local
// bundle and storage expressions, pipe instance sizes and instance override
// values.
func walkExprs(m *model.Module, fn func(string) string) {
	for i := range m.LocalConfigs {
		m.LocalConfigs[i].Value = fn(m.LocalConfigs[i].Value)
	}
	member := func(mem model.BundleMember) model.BundleMember {
		mem = mem.Clone()
		mem.UintLength = fn(mem.UintLength)
		mem.Value = fn(mem.Value)
		for j := range mem.Dims {
			mem.Dims[j] = fn(mem.Dims[j])
		}
		return mem
	}
	for name, b := range m.LocalBundles {
		b = b.Clone()
		for i := range b.Members {
			b.Members[i] = member(b.Members[i])
		}
		for i := range b.EnumMembers {
			b.EnumMembers[i].Value = fn(b.EnumMembers[i].Value)
		}
		m.LocalBundles[name] = b
	}
	for _, storages := range []map[string]model.BundleMember{m.Storages, m.StorageNexts, m.StorageTmps} {
		for name, s := range storages {
			storages[name] = member(s)
		}
	}
	for name, p := range m.PipeInstances {
		p.InputSize = fn(p.InputSize)
		p.OutputSize = fn(p.OutputSize)
		p.BufferSize = fn(p.BufferSize)
		p.Latency = fn(p.Latency)
		m.PipeInstances[name] = p
	}
	for name, inst := range m.Instances {
		if len(inst.Overrides) == 0 {
			continue
		}
		overrides := make(map[string]string, len(inst.Overrides))
		for key, src := range inst.Overrides {
			overrides[key] = fn(src)
		}
		inst.Overrides = overrides
		m.Instances[name] = inst
	}
}

// walkTypes calls fn on every type name of m and stores the result back:
// local bundle members, request and service arguments, pipe ports, pipe
// instances and storages.
func walkTypes(m *model.Module, fn func(string) string) {
	args := func(in []model.Argument) []model.Argument {
		if in == nil {
			return nil
		}
		out := make([]model.Argument, len(in))
		for i, a := range in {
			a.Type = fn(a.Type)
			out[i] = a
		}
		return out
	}
	for name, b := range m.LocalBundles {
		b = b.Clone()
		for i := range b.Members {
			b.Members[i].Type = fn(b.Members[i].Type)
		}
		m.LocalBundles[name] = b
	}
	for _, ports := range []map[string]model.ReqServ{m.Requests, m.Services} {
		for name, p := range ports {
			p.Args = args(p.Args)
			p.Rets = args(p.Rets)
			ports[name] = p
		}
	}
	for _, ports := range []map[string]model.PipePort{m.PipeInputs, m.PipeOutputs} {
		for name, p := range ports {
			p.Type = fn(p.Type)
			ports[name] = p
		}
	}
	for name, p := range m.PipeInstances {
		p.Type = fn(p.Type)
		m.PipeInstances[name] = p
	}
	for _, storages := range []map[string]model.BundleMember{m.Storages, m.StorageNexts, m.StorageTmps} {
		for name, s := range storages {
			s.Type = fn(s.Type)
			storages[name] = s
		}
	}
}

// visitExprs calls fn on every expression walkExprs would rewrite, without
// touching m.
func visitExprs(m *model.Module, fn func(string)) {
	for _, c := range m.LocalConfigs {
		fn(c.Value)
	}
	member := func(mem model.BundleMember) {
		fn(mem.UintLength)
		fn(mem.Value)
		for _, d := range mem.Dims {
			fn(d)
		}
	}
	for _, b := range m.LocalBundles {
		for _, mem := range b.Members {
			member(mem)
		}
		for _, e := range b.EnumMembers {
			fn(e.Value)
		}
	}
	for _, storages := range []map[string]model.BundleMember{m.Storages, m.StorageNexts, m.StorageTmps} {
		for _, s := range storages {
			member(s)
		}
	}
	for _, p := range m.PipeInstances {
		fn(p.InputSize)
		fn(p.OutputSize)
		fn(p.BufferSize)
		fn(p.Latency)
	}
	for _, inst := range m.Instances {
		for _, src := range inst.Overrides {
			fn(src)
		}
	}
}

// visitTypes calls fn on every type name walkTypes would rewrite, without
// touching m.
func visitTypes(m *model.Module, fn func(string)) {
	for _, b := range m.LocalBundles {
		for _, mem := range b.Members {
			fn(mem.Type)
		}
	}
	for _, ports := range []map[string]model.ReqServ{m.Requests, m.Services} {
		for _, p := range ports {
			for _, a := range p.Args {
				fn(a.Type)
			}
			for _, a := range p.Rets {
				fn(a.Type)
			}
		}
	}
	for _, ports := range []map[string]model.PipePort{m.PipeInputs, m.PipeOutputs} {
		for _, p := range ports {
			fn(p.Type)
		}
	}
	for _, p := range m.PipeInstances {
		fn(p.Type)
	}
	for _, storages := range []map[string]model.BundleMember{m.Storages, m.StorageNexts, m.StorageTmps} {
		for _, s := range storages {
			fn(s.Type)
		}
	}
}

func hasLocalConfig(m *model.Module, name string) bool {
	_, ok := m.LocalConfig(name)
	return ok
}

// ExternalConfigRename rewrites every module expression referencing the
// global config item oldName. Modules declaring a local config of that name
// are left alone.
func (l *Library) ExternalConfigRename(oldName, newName string) {
	for _, m := range l.modules {
		if hasLocalConfig(m, oldName) {
			continue
		}
		walkExprs(m, func(src string) string {
			out, _ := expr.RenameIdentifier(src, oldName, newName)
			return out
		})
	}
}

// ExternalConfigReferenced returns the sorted names of the modules whose
// expressions reference the global config item name.
func (l *Library) ExternalConfigReferenced(name string) []string {
	var out []string
	for _, modName := range l.Names() {
		m := l.modules[modName]
		if hasLocalConfig(m, name) {
			continue
		}
		found := false
		visitExprs(m, func(src string) {
			if !found && src != "" {
				if ids, err := expr.ExtractIdentifiers(src); err == nil {
					_, found = ids[name]
				}
			}
		})
		if found {
			out = append(out, "module "+modName)
		}
	}
	return out
}

// ExternalBundleRename rewrites every module type naming the global bundle
// oldName. Modules declaring a local bundle of that name are left alone.
func (l *Library) ExternalBundleRename(oldName, newName string) {
	for _, m := range l.modules {
		if _, ok := m.LocalBundles[oldName]; ok {
			continue
		}
		walkTypes(m, func(t string) string {
			if t == oldName {
				return newName
			}
			return t
		})
	}
}

// ExternalBundleReferenced returns the sorted names of the modules using the
// global bundle name as a type.
func (l *Library) ExternalBundleReferenced(name string) []string {
	var out []string
	for _, modName := range l.Names() {
		m := l.modules[modName]
		if _, ok := m.LocalBundles[name]; ok {
			continue
		}
		found := false
		visitTypes(m, func(t string) {
			if t == name {
				found = true
			}
		})
		if found {
			out = append(out, "module "+modName)
		}
	}
	return out
}
