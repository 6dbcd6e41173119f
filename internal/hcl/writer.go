package hcl

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
	"github.com/zclconf/go-cty/cty"
)

// Writer emits projects in the block schema the Loader reads.
type Writer struct{}

// NewWriter creates a new HCL project writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders p as a single formatted HCL file.
func (w *Writer) Write(ctx context.Context, out io.Writer, p *model.Project) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	first := true
	sep := func() {
		if !first {
			root.AppendNewline()
		}
		first = false
	}
	for _, c := range p.Configs {
		sep()
		writeConfig(root, c)
	}
	for _, b := range p.Bundles {
		sep()
		writeBundle(root, b.Item, b.Tags)
	}
	for _, m := range p.Modules {
		sep()
		writeModule(root, m)
	}

	if _, err := out.Write(hclwrite.Format(f.Bytes())); err != nil {
		return vulerr.Wrap(vulerr.ProjectWrite, err, "failed to write project")
	}
	ctxlog.FromContext(ctx).Debug("HCL project written.",
		"configs", len(p.Configs), "bundles", len(p.Bundles), "modules", len(p.Modules))
	return nil
}

// textValue writes canonical integers as HCL numbers and everything else
// as a quoted expression.
func textValue(s string) cty.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return cty.NumberIntVal(n)
	}
	return cty.StringVal(s)
}

func setText(body *hclwrite.Body, name, s string) {
	if s != "" {
		body.SetAttributeValue(name, textValue(s))
	}
}

func setString(body *hclwrite.Body, name, s string) {
	if s != "" {
		body.SetAttributeValue(name, cty.StringVal(s))
	}
}

func setBool(body *hclwrite.Body, name string, b bool) {
	if b {
		body.SetAttributeValue(name, cty.True)
	}
}

func setTexts(body *hclwrite.Body, name string, items []string) {
	if len(items) == 0 {
		return
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = textValue(s)
	}
	body.SetAttributeValue(name, cty.TupleVal(vals))
}

func writeConfig(body *hclwrite.Body, c model.ConfigItem) {
	b := body.AppendNewBlock("config", []string{c.Name}).Body()
	b.SetAttributeValue("value", textValue(c.Value))
	setString(b, "group", c.Group)
	setString(b, "comment", c.Comment)
}

func writeBundle(body *hclwrite.Body, item model.BundleItem, tags []string) {
	b := body.AppendNewBlock("bundle", []string{item.Name}).Body()
	if len(tags) > 0 {
		vals := make([]cty.Value, len(tags))
		for i, t := range tags {
			vals[i] = cty.StringVal(t)
		}
		b.SetAttributeValue("tags", cty.ListVal(vals))
	}
	setBool(b, "alias", item.IsAlias)
	setString(b, "comment", item.Comment)
	for _, m := range item.Members {
		writeMember(b, "member", m)
	}
	for _, e := range item.EnumMembers {
		eb := b.AppendNewBlock("enum", []string{e.Name}).Body()
		setText(eb, "value", e.Value)
		setString(eb, "comment", e.Comment)
	}
}

func writeMember(body *hclwrite.Body, blockType string, m model.BundleMember) {
	b := body.AppendNewBlock(blockType, []string{m.Name}).Body()
	setString(b, "type", m.Type)
	setText(b, "length", m.UintLength)
	setTexts(b, "dims", m.Dims)
	setText(b, "value", m.Value)
	setString(b, "comment", m.Comment)
}

func writeReqServ(body *hclwrite.Body, blockType string, rs model.ReqServ) {
	b := body.AppendNewBlock(blockType, []string{rs.Name}).Body()
	setBool(b, "handshake", rs.Handshake)
	setString(b, "comment", rs.Comment)
	for _, a := range rs.Args {
		ab := b.AppendNewBlock("arg", []string{a.Name}).Body()
		ab.SetAttributeValue("type", cty.StringVal(a.Type))
		setString(ab, "comment", a.Comment)
	}
	for _, r := range rs.Rets {
		rb := b.AppendNewBlock("ret", []string{r.Name}).Body()
		rb.SetAttributeValue("type", cty.StringVal(r.Type))
		setString(rb, "comment", r.Comment)
	}
}

func writePort(body *hclwrite.Body, blockType string, p model.PipePort) {
	b := body.AppendNewBlock(blockType, []string{p.Name}).Body()
	b.SetAttributeValue("type", cty.StringVal(p.Type))
	setString(b, "comment", p.Comment)
}

func endpoint(instance, port string) string {
	if instance == "" {
		return port
	}
	return instance + "." + port
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeModule(body *hclwrite.Body, m *model.Module) {
	b := body.AppendNewBlock("module", []string{m.Name}).Body()
	setString(b, "comment", m.Comment)

	for _, c := range m.LocalConfigs {
		writeConfig(b, c)
	}
	for _, name := range sortedNames(m.LocalBundles) {
		writeBundle(b, m.LocalBundles[name], nil)
	}
	for _, name := range sortedNames(m.Requests) {
		writeReqServ(b, "request", m.Requests[name])
	}
	for _, name := range sortedNames(m.Services) {
		writeReqServ(b, "service", m.Services[name])
	}
	for _, name := range sortedNames(m.PipeInputs) {
		writePort(b, "pipe_input", m.PipeInputs[name])
	}
	for _, name := range sortedNames(m.PipeOutputs) {
		writePort(b, "pipe_output", m.PipeOutputs[name])
	}

	for _, name := range sortedNames(m.Instances) {
		inst := m.Instances[name]
		ib := b.AppendNewBlock("instance", []string{name}).Body()
		ib.SetAttributeValue("module", cty.StringVal(inst.Module))
		if len(inst.Overrides) > 0 {
			attrs := make(map[string]cty.Value, len(inst.Overrides))
			for k, v := range inst.Overrides {
				attrs[k] = textValue(v)
			}
			ib.SetAttributeValue("overrides", cty.ObjectVal(attrs))
		}
		setString(ib, "comment", inst.Comment)
	}
	for _, name := range sortedNames(m.PipeInstances) {
		p := m.PipeInstances[name]
		pb := b.AppendNewBlock("pipe", []string{name}).Body()
		pb.SetAttributeValue("type", cty.StringVal(p.Type))
		setText(pb, "input_size", p.InputSize)
		setText(pb, "output_size", p.OutputSize)
		setText(pb, "buffer_size", p.BufferSize)
		setText(pb, "latency", p.Latency)
		setBool(pb, "handshake", p.Handshake)
		setBool(pb, "valid", p.Valid)
		setString(pb, "comment", p.Comment)
	}

	for _, c := range m.ReqConns {
		cb := b.AppendNewBlock("connect", nil).Body()
		cb.SetAttributeValue("from", cty.StringVal(endpoint(c.FromInstance, c.FromPort)))
		cb.SetAttributeValue("to", cty.StringVal(endpoint(c.ToInstance, c.ToPort)))
	}
	for _, c := range m.PipeConns {
		cb := b.AppendNewBlock("pipe_connect", nil).Body()
		cb.SetAttributeValue("instance", cty.StringVal(c.Instance))
		cb.SetAttributeValue("port", cty.StringVal(c.Port))
		cb.SetAttributeValue("pipe", cty.StringVal(c.Pipe))
	}
	for _, s := range m.StallConns {
		sb := b.AppendNewBlock("stall", nil).Body()
		sb.SetAttributeValue("from", cty.StringVal(s.From))
		sb.SetAttributeValue("to", cty.StringVal(s.To))
	}
	for _, u := range m.UpdateConstraints {
		ub := b.AppendNewBlock("update", nil).Body()
		ub.SetAttributeValue("before", cty.StringVal(u.From))
		ub.SetAttributeValue("after", cty.StringVal(u.To))
	}

	for _, name := range sortedNames(m.Storages) {
		writeMember(b, "storage", m.Storages[name])
	}
	for _, name := range sortedNames(m.StorageNexts) {
		writeMember(b, "storage_next", m.StorageNexts[name])
	}
	for _, name := range sortedNames(m.StorageTmps) {
		writeMember(b, "storage_tmp", m.StorageTmps[name])
	}

	for _, name := range sortedNames(m.TickCodes) {
		t := m.TickCodes[name]
		tb := b.AppendNewBlock("tick", []string{name}).Body()
		tb.SetAttributeValue("code", cty.StringVal(t.Code))
		setString(tb, "comment", t.Comment)
	}
	for _, name := range sortedNames(m.ServiceCodes) {
		sb := b.AppendNewBlock("service_code", []string{name}).Body()
		sb.SetAttributeValue("code", cty.StringVal(m.ServiceCodes[name].Code))
	}
	for _, rc := range m.RequestCodes {
		rb := b.AppendNewBlock("request_code", []string{rc.Instance, rc.Request}).Body()
		rb.SetAttributeValue("code", cty.StringVal(rc.Code))
	}
}
