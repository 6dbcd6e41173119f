package modulelib

import (
	"testing"

	"github.com/specialistvlad/vuldesign/internal/bundlelib"
	"github.com/specialistvlad/vuldesign/internal/configlib"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	configs *configlib.Library
	bundles *bundlelib.Library
	lib     *Library
	leaf    *model.Module
	top     *model.Module
}

func args(types ...string) []model.Argument {
	out := make([]model.Argument, len(types))
	for i, t := range types {
		out[i] = model.Argument{Name: "a" + string(rune('0'+i)), Type: t}
	}
	return out
}

func leafModule() *model.Module {
	m := model.NewModule("leaf")
	m.LocalConfigs = []model.ConfigItem{{Name: "N", Value: "4"}}
	m.Requests["rd"] = model.ReqServ{Name: "rd", Args: args("uint32"), Rets: args("word"), Handshake: true}
	m.Services["wr"] = model.ReqServ{Name: "wr", Args: args("word")}
	m.Services["ack"] = model.ReqServ{Name: "ack", Handshake: true}
	m.PipeInputs["in"] = model.PipePort{Name: "in", Type: "word"}
	m.PipeOutputs["out"] = model.PipePort{Name: "out", Type: "word"}
	m.Storages["r"] = model.BundleMember{Name: "r", Type: "uint32"}
	m.ServiceCodes["wr"] = model.ServiceCode{Service: "wr", Code: "r = a0;"}
	m.ServiceCodes["ack"] = model.ServiceCode{Service: "ack", Code: "return;"}
	return m
}

func topModule() *model.Module {
	m := model.NewModule("top")
	m.LocalConfigs = []model.ConfigItem{{Name: "N2", Value: "DEPTH + 1"}}
	m.LocalBundles["frame"] = model.BundleItem{Name: "frame", Members: []model.BundleMember{
		{Name: "w", Type: "word"},
		{Name: "n", Type: "uint8", Dims: []string{"N2"}},
	}}
	m.Requests["mem"] = model.ReqServ{Name: "mem", Args: args("uint32"), Rets: args("word"), Handshake: true}
	m.Services["kick"] = model.ReqServ{Name: "kick", Args: args("word")}
	m.PipeInputs["src"] = model.PipePort{Name: "src", Type: "word"}
	m.PipeOutputs["dst"] = model.PipePort{Name: "dst", Type: "word"}
	m.Instances["u0"] = model.Instance{Name: "u0", Module: "leaf"}
	m.Instances["u1"] = model.Instance{Name: "u1", Module: "leaf", Overrides: map[string]string{"N": "DEPTH * 2"}}
	m.PipeInstances["p0"] = model.PipeInstance{Name: "p0", Type: "word", InputSize: "1", OutputSize: "1", BufferSize: "DEPTH", Latency: "1"}
	m.ReqConns = []model.ReqConn{
		{FromInstance: "u0", FromPort: "rd", ToPort: "mem"},
		{FromInstance: "u1", FromPort: "rd", ToPort: "mem"},
		{FromPort: "kick", ToInstance: "u0", ToPort: "wr"},
		{FromPort: "kick", ToInstance: "u1", ToPort: "wr"},
	}
	m.PipeConns = []model.PipeConn{
		{Instance: "u0", Port: "in", Pipe: "src"},
		{Instance: "u0", Port: "out", Pipe: "p0"},
		{Instance: "u1", Port: "in", Pipe: "p0"},
		{Instance: "u1", Port: "out", Pipe: "dst"},
	}
	m.StallConns = []model.SeqConn{{From: "u0", To: "u1"}}
	m.UpdateConstraints = []model.SeqConn{{From: model.TopInterface, To: "u0"}}
	m.TickCodes["t0"] = model.TickCode{Name: "t0", Code: "tick();"}
	m.Storages["cnt"] = model.BundleMember{Name: "cnt", UintLength: "@DEPTH"}
	return m
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	configs := configlib.New()
	require.NoError(t, configs.Load([]model.ConfigItem{
		{Name: "WIDTH", Value: "32"},
		{Name: "DEPTH", Value: "4"},
	}))
	bundles := bundlelib.New(configs)
	require.NoError(t, bundles.Insert(model.BundleItem{Name: "word", Members: []model.BundleMember{
		{Name: "data", UintLength: "WIDTH"},
	}}, "bus"))

	f := &fixture{
		configs: configs,
		bundles: bundles,
		lib:     New(configs, bundles),
		leaf:    leafModule(),
		top:     topModule(),
	}
	require.NoError(t, f.lib.Load([]*model.Module{f.top, f.leaf}))
	return f
}
