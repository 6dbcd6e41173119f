package hcl

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

func (d *fileDecoder) translateConfig(c *configBlock, src *model.FSInfo) (model.ConfigItem, error) {
	if !isExprDefined(d.ctx, c.Value, "value") {
		return model.ConfigItem{}, d.decodeErr(c.DeclRange, "config %q has no value", c.Name)
	}
	value, err := d.exprText(c.Value, "value")
	if err != nil {
		return model.ConfigItem{}, err
	}
	return model.ConfigItem{
		Name:    c.Name,
		Value:   value,
		Comment: deref(c.Comment),
		Group:   deref(c.Group),
		Source:  src,
	}, nil
}

func (d *fileDecoder) translateBundle(b *bundleBlock, src *model.FSInfo) (model.BundleItem, error) {
	item := model.BundleItem{
		Name:    b.Name,
		Comment: deref(b.Comment),
		IsAlias: deref(b.Alias),
		Source:  src,
	}
	for _, m := range b.Members {
		member, err := d.translateMember(m)
		if err != nil {
			return model.BundleItem{}, err
		}
		item.Members = append(item.Members, member)
	}
	for _, e := range b.Enums {
		value, err := d.exprText(e.Value, "value")
		if err != nil {
			return model.BundleItem{}, err
		}
		item.EnumMembers = append(item.EnumMembers, model.EnumMember{
			Name:    e.Name,
			Value:   value,
			Comment: deref(e.Comment),
		})
	}
	return item, nil
}

func (d *fileDecoder) translateMember(m *memberBlock) (model.BundleMember, error) {
	length, err := d.exprText(m.Length, "length")
	if err != nil {
		return model.BundleMember{}, err
	}
	value, err := d.exprText(m.Value, "value")
	if err != nil {
		return model.BundleMember{}, err
	}
	dims, err := d.exprTexts(m.Dims, "dims")
	if err != nil {
		return model.BundleMember{}, err
	}
	return model.BundleMember{
		Name:       m.Name,
		Type:       deref(m.Type),
		UintLength: length,
		Value:      value,
		Comment:    deref(m.Comment),
		Dims:       dims,
	}, nil
}

func translateArgs(blocks []*argBlock) []model.Argument {
	var out []model.Argument
	for _, a := range blocks {
		out = append(out, model.Argument{Name: a.Name, Type: a.Type, Comment: deref(a.Comment)})
	}
	return out
}

func translateReqServ(b *reqServBlock) model.ReqServ {
	return model.ReqServ{
		Name:      b.Name,
		Comment:   deref(b.Comment),
		Args:      translateArgs(b.Args),
		Rets:      translateArgs(b.Rets),
		Handshake: deref(b.Handshake),
	}
}

// splitEndpoint splits "instance.port"; a bare "port" has no instance.
func splitEndpoint(s string) (instance, port string) {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

// put stores v under name unless the name is taken.
func put[V any](d *fileDecoder, m map[string]V, module, kind, name string, v V) error {
	if _, dup := m[name]; dup {
		return vulerr.New(vulerr.ProjectDecode, "%s: module %q declares %s %q more than once", d.path, module, kind, name)
	}
	m[name] = v
	return nil
}

func (d *fileDecoder) translateModule(b *moduleBlock) (*model.Module, error) {
	m := model.NewModule(b.Name)
	m.Comment = deref(b.Comment)
	m.Source = d.source("module", b.Name)

	for _, c := range b.Configs {
		item, err := d.translateConfig(c, m.Source)
		if err != nil {
			return nil, err
		}
		m.LocalConfigs = append(m.LocalConfigs, item)
	}
	for _, lb := range b.Bundles {
		item, err := d.translateBundle(lb, m.Source)
		if err != nil {
			return nil, err
		}
		if err := put(d, m.LocalBundles, b.Name, "bundle", item.Name, item); err != nil {
			return nil, err
		}
	}

	for _, r := range b.Requests {
		if err := put(d, m.Requests, b.Name, "request", r.Name, translateReqServ(r)); err != nil {
			return nil, err
		}
	}
	for _, s := range b.Services {
		if err := put(d, m.Services, b.Name, "service", s.Name, translateReqServ(s)); err != nil {
			return nil, err
		}
	}
	for _, p := range b.PipeInputs {
		port := model.PipePort{Name: p.Name, Type: p.Type, Comment: deref(p.Comment)}
		if err := put(d, m.PipeInputs, b.Name, "pipe input", p.Name, port); err != nil {
			return nil, err
		}
	}
	for _, p := range b.PipeOutputs {
		port := model.PipePort{Name: p.Name, Type: p.Type, Comment: deref(p.Comment)}
		if err := put(d, m.PipeOutputs, b.Name, "pipe output", p.Name, port); err != nil {
			return nil, err
		}
	}

	for _, i := range b.Instances {
		overrides, err := d.exprTextMap(i.Overrides, "overrides")
		if err != nil {
			return nil, err
		}
		inst := model.Instance{Name: i.Name, Module: i.Module, Comment: deref(i.Comment), Overrides: overrides}
		if err := put(d, m.Instances, b.Name, "instance", i.Name, inst); err != nil {
			return nil, err
		}
	}
	for _, p := range b.Pipes {
		pipe, err := d.translatePipe(p)
		if err != nil {
			return nil, err
		}
		if err := put(d, m.PipeInstances, b.Name, "pipe", p.Name, pipe); err != nil {
			return nil, err
		}
	}

	for _, c := range b.Connects {
		fromInst, fromPort := splitEndpoint(c.From)
		toInst, toPort := splitEndpoint(c.To)
		m.ReqConns = append(m.ReqConns, model.ReqConn{
			FromInstance: fromInst, FromPort: fromPort,
			ToInstance: toInst, ToPort: toPort,
		})
	}
	for _, c := range b.PipeConnects {
		m.PipeConns = append(m.PipeConns, model.PipeConn{Instance: c.Instance, Port: c.Port, Pipe: c.Pipe})
	}
	for _, s := range b.Stalls {
		m.StallConns = append(m.StallConns, model.SeqConn{From: s.From, To: s.To})
	}
	for _, u := range b.Updates {
		m.UpdateConstraints = append(m.UpdateConstraints, model.SeqConn{From: u.Before, To: u.After})
	}

	storages := []struct {
		kind   string
		blocks []*memberBlock
		dst    map[string]model.BundleMember
	}{
		{"storage", b.Storages, m.Storages},
		{"storage_next", b.StorageNexts, m.StorageNexts},
		{"storage_tmp", b.StorageTmps, m.StorageTmps},
	}
	for _, s := range storages {
		for _, sb := range s.blocks {
			member, err := d.translateMember(sb)
			if err != nil {
				return nil, err
			}
			if err := put(d, s.dst, b.Name, s.kind, sb.Name, member); err != nil {
				return nil, err
			}
		}
	}

	for _, t := range b.Ticks {
		tick := model.TickCode{Name: t.Name, Code: t.Code, Comment: deref(t.Comment)}
		if err := put(d, m.TickCodes, b.Name, "tick", t.Name, tick); err != nil {
			return nil, err
		}
	}
	for _, sc := range b.ServiceCodes {
		code := model.ServiceCode{Service: sc.Service, Code: sc.Code}
		if err := put(d, m.ServiceCodes, b.Name, "service_code", sc.Service, code); err != nil {
			return nil, err
		}
	}
	for _, rc := range b.RequestCodes {
		m.RequestCodes = append(m.RequestCodes, model.RequestCode{Instance: rc.Instance, Request: rc.Request, Code: rc.Code})
	}
	return m, nil
}

func (d *fileDecoder) translatePipe(p *pipeBlock) (model.PipeInstance, error) {
	pipe := model.PipeInstance{
		Name:      p.Name,
		Type:      p.Type,
		Comment:   deref(p.Comment),
		Handshake: deref(p.Handshake),
		Valid:     deref(p.Valid),
	}
	fields := []struct {
		attr string
		expr hcl.Expression
		dst  *string
	}{
		{"input_size", p.InputSize, &pipe.InputSize},
		{"output_size", p.OutputSize, &pipe.OutputSize},
		{"buffer_size", p.BufferSize, &pipe.BufferSize},
		{"latency", p.Latency, &pipe.Latency},
	}
	for _, f := range fields {
		s, err := d.exprText(f.expr, f.attr)
		if err != nil {
			return model.PipeInstance{}, err
		}
		*f.dst = s
	}
	return pipe, nil
}
