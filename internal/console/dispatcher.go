// Package console executes design commands. The same Dispatcher serves the
// one-shot CLI commands and the interactive line-editor console.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/specialistvlad/vuldesign/internal/design"
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/hcl"
	"github.com/specialistvlad/vuldesign/internal/model"
)

// ErrQuit is returned by the quit command.
var ErrQuit = errors.New("quit")

// command is one entry of the dispatch table. maxArgs < 0 means unbounded.
type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, out io.Writer, args []string) error
}

// Dispatcher runs commands against one design.
type Dispatcher struct {
	design       *design.Design
	writer       *hcl.Writer
	sortedExport bool
	commands     map[string]command
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSortedExport makes export write every library in name order instead
// of dependency order.
func WithSortedExport(sorted bool) Option {
	return func(c *Dispatcher) { c.sortedExport = sorted }
}

// NewDispatcher returns a dispatcher bound to d.
func NewDispatcher(d *design.Design, w *hcl.Writer, opts ...Option) *Dispatcher {
	c := &Dispatcher{design: d, writer: w}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = map[string]command{
		"eval":          {"eval EXPR", "evaluate an expression against the global config items", 1, -1, c.eval},
		"parse":         {"parse EXPR", "print the fully parenthesized form of an expression", 1, -1, c.parse},
		"config":        {"config NAME", "show a config item and its references", 1, 1, c.config},
		"configs":       {"configs [GROUP]", "list config items, optionally of one group", 0, 1, c.configs},
		"bundle":        {"bundle NAME", "show a bundle", 1, 1, c.bundle},
		"order":         {"order", "print the dependency order of every library", 0, 0, c.order},
		"validate":      {"validate [MODULE]", "validate one module or the whole design", 0, 1, c.validate},
		"update-order":  {"update-order MODULE", "print the instance update order of a module", 1, 1, c.updateOrder},
		"rename-config": {"rename-config OLD NEW", "rename a config item everywhere", 2, 2, c.renameConfig},
		"remove-config": {"remove-config NAME", "remove an unreferenced config item", 1, 1, c.removeConfig},
		"rename-bundle": {"rename-bundle OLD NEW", "rename a bundle everywhere", 2, 2, c.renameBundle},
		"export":        {"export FILE", "write the design to an HCL file", 1, 1, c.export},
		"help":          {"help", "list commands", 0, 0, c.help},
		"quit":          {"quit", "leave the console", 0, 0, func(context.Context, io.Writer, []string) error { return ErrQuit }},
	}
	return c
}

// IsCommand reports whether name is a dispatchable command.
func (c *Dispatcher) IsCommand(name string) bool {
	_, ok := c.commands[name]
	return ok
}

// Commands returns the command names in lexical order.
func (c *Dispatcher) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec runs the command named by args[0] with the remaining arguments.
func (c *Dispatcher) Exec(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}
	cmd, ok := c.commands[args[0]]
	if !ok {
		return errors.Errorf("unknown command %q, type help for a list", args[0])
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs || (cmd.maxArgs >= 0 && len(rest) > cmd.maxArgs) {
		return errors.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(ctx, out, rest)
}

// Complete suggests command names for the first word and config or bundle
// names for the second.
func (c *Dispatcher) Complete(line string) []string {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")

	var prefix, head string
	var candidates []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !trailing):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		candidates = c.Commands()
	case len(fields) == 1 && trailing, len(fields) == 2 && !trailing:
		head = fields[0] + " "
		if len(fields) == 2 {
			prefix = fields[1]
		}
		switch fields[0] {
		case "config", "rename-config", "remove-config", "eval":
			candidates = c.design.Configs.Names()
		case "bundle", "rename-bundle":
			candidates = c.design.Bundles.Names()
		case "validate", "update-order":
			candidates = c.design.Modules.Names()
		}
	}

	var out []string
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, head+cand)
		}
	}
	return out
}

func (c *Dispatcher) eval(_ context.Context, out io.Writer, args []string) error {
	v, err := c.design.Evaluate(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, v)
	return nil
}

func (c *Dispatcher) parse(_ context.Context, out io.Writer, args []string) error {
	n, err := expr.ParseString(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, expr.Format(n))
	return nil
}

func (c *Dispatcher) config(_ context.Context, out io.Writer, args []string) error {
	item, err := c.design.Configs.Get(args[0])
	if err != nil {
		return err
	}
	v, err := c.design.Configs.Value(item.Name)
	if err != nil {
		return err
	}
	refs, _ := c.design.Configs.References(item.Name)
	users, _ := c.design.Configs.ReverseReferences(item.Name)

	fmt.Fprintf(out, "%s = %d (%s)\n", item.Name, v, item.Value)
	if item.Group != "" {
		fmt.Fprintf(out, "  group: %s\n", item.Group)
	}
	if item.Comment != "" {
		fmt.Fprintf(out, "  comment: %s\n", item.Comment)
	}
	if len(refs) > 0 {
		fmt.Fprintf(out, "  references: %s\n", strings.Join(refs, ", "))
	}
	if len(users) > 0 {
		fmt.Fprintf(out, "  referenced by: %s\n", strings.Join(users, ", "))
	}
	if src := item.Source.String(); src != "" {
		fmt.Fprintf(out, "  defined at: %s\n", src)
	}
	return nil
}

func (c *Dispatcher) configs(_ context.Context, out io.Writer, args []string) error {
	names := c.design.Configs.Names()
	if len(args) == 1 {
		names = c.design.Configs.ListGroup(args[0])
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func (c *Dispatcher) bundle(_ context.Context, out io.Writer, args []string) error {
	item, err := c.design.Bundles.Get(args[0])
	if err != nil {
		return err
	}
	tags, _ := c.design.Bundles.Tags(item.Name)
	fmt.Fprintf(out, "%s %s [%s]\n", item.Kind(), item.Name, strings.Join(tags, ", "))
	for _, m := range item.Members {
		fmt.Fprintf(out, "  %s\n", describeMember(m))
	}
	for _, e := range item.EnumMembers {
		if e.Value == "" {
			fmt.Fprintf(out, "  %s\n", e.Name)
			continue
		}
		fmt.Fprintf(out, "  %s = %s\n", e.Name, e.Value)
	}
	return nil
}

func describeMember(m model.BundleMember) string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString(": ")
	switch {
	case m.UintLength != "":
		fmt.Fprintf(&b, "uint(%s)", m.UintLength)
	default:
		b.WriteString(m.Type)
	}
	for _, d := range m.Dims {
		fmt.Fprintf(&b, "[%s]", d)
	}
	if m.Value != "" {
		fmt.Fprintf(&b, " = %s", m.Value)
	}
	return b.String()
}

func (c *Dispatcher) order(_ context.Context, out io.Writer, _ []string) error {
	o, err := c.design.Orders()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "configs: %s\n", strings.Join(o.Configs, ", "))
	fmt.Fprintf(out, "bundles: %s\n", strings.Join(o.Bundles, ", "))
	fmt.Fprintf(out, "modules: %s\n", strings.Join(o.Modules, ", "))
	return nil
}

func (c *Dispatcher) validate(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 1 {
		if err := c.design.Modules.Validate(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "module %s: ok\n", args[0])
		return nil
	}
	if err := c.design.Validate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "design ok: %d modules\n", len(c.design.Modules.Names()))
	return nil
}

func (c *Dispatcher) updateOrder(_ context.Context, out io.Writer, args []string) error {
	order, err := c.design.Modules.InstanceUpdateOrder(args[0], nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.Join(order, " -> "))
	return nil
}

func (c *Dispatcher) renameConfig(ctx context.Context, out io.Writer, args []string) error {
	if err := c.design.RenameConfig(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(out, "config %s renamed to %s\n", args[0], args[1])
	return nil
}

func (c *Dispatcher) removeConfig(ctx context.Context, out io.Writer, args []string) error {
	if err := c.design.RemoveConfig(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "config %s removed\n", args[0])
	return nil
}

func (c *Dispatcher) renameBundle(ctx context.Context, out io.Writer, args []string) error {
	if err := c.design.RenameBundle(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(out, "bundle %s renamed to %s\n", args[0], args[1])
	return nil
}

func (c *Dispatcher) export(ctx context.Context, out io.Writer, args []string) error {
	p, err := c.exportProject()
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", args[0])
	}
	if err := c.writer.Write(ctx, f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", args[0])
	}
	fmt.Fprintf(out, "design written to %s\n", args[0])
	return nil
}

// exportProject returns the design with every library in dependency order,
// or in name order when sorted export is on.
func (c *Dispatcher) exportProject() (*model.Project, error) {
	p := c.design.Project()
	if c.sortedExport {
		return p, nil
	}
	o, err := c.design.Orders()
	if err != nil {
		return nil, err
	}
	sortByOrder(p.Configs, o.Configs, func(c model.ConfigItem) string { return c.Name })
	sortByOrder(p.Bundles, o.Bundles, func(b model.TaggedBundle) string { return b.Item.Name })
	sortByOrder(p.Modules, o.Modules, func(m *model.Module) string { return m.Name })
	return p, nil
}

func sortByOrder[T any](items []T, order []string, name func(T) string) {
	rank := make(map[string]int, len(order))
	for i, n := range order {
		rank[n] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		return rank[name(items[i])] < rank[name(items[j])]
	})
}

func (c *Dispatcher) help(_ context.Context, out io.Writer, _ []string) error {
	for _, name := range c.Commands() {
		cmd := c.commands[name]
		fmt.Fprintf(out, "  %-24s %s\n", cmd.usage, cmd.summary)
	}
	return nil
}
