// Package design ties the config, bundle and module libraries of one design
// together. It registers the rename observers between them and enforces the
// rules that span more than one library, such as the single global
// namespace shared by configs, bundles and modules.
package design

import (
	"context"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/bundlelib"
	"github.com/specialistvlad/vuldesign/internal/configlib"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/modulelib"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Design is one loaded design. It is not safe for concurrent use.
type Design struct {
	Configs *configlib.Library
	Bundles *bundlelib.Library
	Modules *modulelib.Library
}

// Orders holds the dependency orders of every library.
type Orders struct {
	Configs []string
	Bundles []string
	Modules []string
}

// New returns an empty design with its libraries wired together.
func New() *Design {
	configs := configlib.New()
	bundles := bundlelib.New(configs)
	modules := modulelib.New(configs, bundles)

	configs.Observe(bundles)
	configs.Observe(modules)
	bundles.Observe(modules)

	return &Design{Configs: configs, Bundles: bundles, Modules: modules}
}

// Load adds every declaration of p. Configs are loaded first, then bundles,
// then modules; the first failure stops the load.
func (d *Design) Load(ctx context.Context, p *model.Project) error {
	logger := ctxlog.FromContext(ctx)

	if err := d.checkGlobalNames(p); err != nil {
		return err
	}
	if err := d.Configs.Load(p.Configs); err != nil {
		return err
	}
	logger.Debug("Load: Config items added.", "count", len(p.Configs))

	if err := d.Bundles.Load(p.Bundles); err != nil {
		return err
	}
	logger.Debug("Load: Bundles added.", "count", len(p.Bundles))

	if err := d.Modules.Load(p.Modules); err != nil {
		return err
	}
	logger.Debug("Load: Modules added.", "count", len(p.Modules))
	return nil
}

// checkGlobalNames rejects a project declaring the same name as more than
// one kind of global entity.
func (d *Design) checkGlobalNames(p *model.Project) error {
	kinds := make(map[string]string)
	claim := func(kind, name string) error {
		if prev, ok := kinds[name]; ok && prev != kind {
			return vulerr.New(vulerr.GlobalNameConflict, "%s %q conflicts with %s %q", kind, name, prev, name)
		}
		if prev := d.globalKind(name); prev != "" && prev != kind {
			return vulerr.New(vulerr.GlobalNameConflict, "%s %q conflicts with %s %q", kind, name, prev, name)
		}
		kinds[name] = kind
		return nil
	}
	for _, c := range p.Configs {
		if err := claim("config item", c.Name); err != nil {
			return err
		}
	}
	for _, b := range p.Bundles {
		if err := claim("bundle", b.Item.Name); err != nil {
			return err
		}
	}
	for _, m := range p.Modules {
		if err := claim("module", m.Name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Design) globalKind(name string) string {
	switch {
	case d.Configs.Has(name):
		return "config item"
	case d.Bundles.Has(name):
		return "bundle"
	case d.Modules.Has(name):
		return "module"
	}
	return ""
}

// Orders returns the dependency order of every library.
func (d *Design) Orders() (Orders, error) {
	var o Orders
	var err error
	if o.Configs, err = d.Configs.TopoOrder(); err != nil {
		return Orders{}, err
	}
	if o.Bundles, err = d.Bundles.TopoSort(); err != nil {
		return Orders{}, err
	}
	if o.Modules, err = d.Modules.TopoOrder(); err != nil {
		return Orders{}, err
	}
	return o, nil
}

// Validate checks the library orders and then validates every module,
// children before parents.
func (d *Design) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	orders, err := d.Orders()
	if err != nil {
		return err
	}
	logger.Debug("Validate: Library orders computed.",
		"configs", len(orders.Configs), "bundles", len(orders.Bundles), "modules", len(orders.Modules))

	for _, name := range orders.Modules {
		if err := d.Modules.Validate(name); err != nil {
			logger.Debug("Validate: Module failed.", "module", name, "error", err)
			return err
		}
		logger.Debug("Validate: Module passed.", "module", name)
	}
	return nil
}

// checkRenameTarget rejects a new global name already used by another global
// kind or by a local entity of any module.
func (d *Design) checkRenameTarget(kind, oldName, newName string) error {
	if other := d.globalKind(newName); other != "" && other != kind {
		return vulerr.New(vulerr.GlobalNameConflict, "%s %q cannot be renamed to %q, which names a %s", kind, oldName, newName, other)
	}
	if users := d.Modules.LocalNameUsers(newName); len(users) > 0 {
		return vulerr.New(vulerr.GlobalNameConflict, "%s %q cannot be renamed to %q, which is a local name of %s",
			kind, oldName, newName, strings.Join(users, ", "))
	}
	return nil
}

// RenameConfig renames a global config item and every reference to it.
func (d *Design) RenameConfig(ctx context.Context, oldName, newName string) error {
	if err := d.checkRenameTarget("config item", oldName, newName); err != nil {
		return err
	}
	if err := d.Configs.Rename(oldName, newName); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Config item renamed.", "from", oldName, "to", newName)
	return nil
}

// RemoveConfig deletes a global config item nothing references.
func (d *Design) RemoveConfig(ctx context.Context, name string) error {
	if err := d.Configs.Remove(name); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Config item removed.", "name", name)
	return nil
}

// RenameBundle renames a global bundle and every type naming it.
func (d *Design) RenameBundle(ctx context.Context, oldName, newName string) error {
	if err := d.checkRenameTarget("bundle", oldName, newName); err != nil {
		return err
	}
	if err := d.Bundles.Rename(oldName, newName); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Bundle renamed.", "from", oldName, "to", newName)
	return nil
}

// Evaluate computes src against the global config items.
func (d *Design) Evaluate(src string) (int64, error) {
	return d.Configs.Evaluate(src, nil, nil)
}

// Project returns the current state of the design as plain records, each
// library sorted by name.
func (d *Design) Project() *model.Project {
	p := model.NewProject()
	p.Configs = d.Configs.Items()
	p.Bundles = d.Bundles.Items()
	for _, name := range d.Modules.Names() {
		m, _ := d.Modules.Get(name)
		p.Modules = append(p.Modules, m)
	}
	return p
}
