package hcl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const designHCL = `config "WIDTH" {
  value   = 32
  group   = "bus"
  comment = "data width"
}

config "DEPTH" {
  value = WIDTH / 8
}

config "MASK" {
  value = "(1 << WIDTH) - 1"
}

bundle "word" {
  tags = ["bus", "core"]
  member "data" {
    type   = "__uint__"
    length = "WIDTH"
  }
  member "lanes" {
    type = "uint8"
    dims = [DEPTH, 2]
  }
}

bundle "state" {
  enum "IDLE" { value = 0 }
  enum "BUSY" {}
}

module "leaf" {
  config "N" { value = 4 }

  request "rd" {
    handshake = true
    arg "addr" { type = "uint32" }
    ret "data" { type = "word" }
  }
  service "wr" {
    arg "v" { type = "word" }
  }
  pipe_input "in" { type = "word" }
  pipe_output "out" { type = "word" }

  storage "r" { type = "uint32" }
  service_code "wr" { code = "r = v;" }
}

module "top" {
  comment = "top level"

  request "mem" {
    handshake = true
    arg "addr" { type = "uint32" }
    ret "data" { type = "word" }
  }
  instance "u0" { module = "leaf" }
  instance "u1" {
    module    = "leaf"
    overrides = { N = DEPTH * 2 }
  }
  pipe "p0" {
    type        = "word"
    buffer_size = "DEPTH"
    latency     = 1
  }

  connect {
    from = "u0.rd"
    to   = "mem"
  }
  pipe_connect {
    instance = "u0"
    port     = "out"
    pipe     = "p0"
  }
  stall {
    from = "u0"
    to   = "u1"
  }
  update {
    before = "__top__"
    after  = "u0"
  }

  storage_next "cnt" { length = "@DEPTH" }
  tick "t0" { code = "tick();" }
  request_code "u0" "rd" { code = "return 0;" }
}
`

var ignoreSource = cmp.Options{
	cmpopts.IgnoreFields(model.ConfigItem{}, "Source"),
	cmpopts.IgnoreFields(model.BundleItem{}, "Source"),
	cmpopts.IgnoreFields(model.Module{}, "Source"),
	cmpopts.EquateEmpty(),
}

func loadDesign(t *testing.T) *model.Project {
	t.Helper()
	p, err := NewLoader().LoadSource(context.Background(), "design.hcl", []byte(designHCL))
	require.NoError(t, err)
	return p
}

func TestLoadSource_Configs(t *testing.T) {
	p := loadDesign(t)

	want := []model.ConfigItem{
		{Name: "WIDTH", Value: "32", Group: "bus", Comment: "data width"},
		{Name: "DEPTH", Value: "WIDTH / 8"},
		{Name: "MASK", Value: "(1 << WIDTH) - 1"},
	}
	if diff := cmp.Diff(want, p.Configs, ignoreSource); diff != "" {
		t.Errorf("configs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "design.hcl:1", p.Configs[0].Source.String())
	assert.Equal(t, "design.hcl:7", p.Configs[1].Source.String())
}

func TestLoadSource_Bundles(t *testing.T) {
	p := loadDesign(t)
	require.Len(t, p.Bundles, 2)

	word := p.Bundles[0]
	assert.Equal(t, []string{"bus", "core"}, word.Tags)
	assert.Equal(t, model.BundleStruct, word.Item.Kind())
	assert.Equal(t, []model.BundleMember{
		{Name: "data", Type: model.UintType, UintLength: "WIDTH"},
		{Name: "lanes", Type: "uint8", Dims: []string{"DEPTH", "2"}},
	}, word.Item.Members)

	state := p.Bundles[1]
	assert.Nil(t, state.Tags)
	assert.Equal(t, model.BundleEnum, state.Item.Kind())
	assert.Equal(t, []model.EnumMember{{Name: "IDLE", Value: "0"}, {Name: "BUSY"}}, state.Item.EnumMembers)
}

func TestLoadSource_Modules(t *testing.T) {
	p := loadDesign(t)
	require.Len(t, p.Modules, 2)

	leaf := p.Modules[0]
	assert.Equal(t, "leaf", leaf.Name)
	assert.Equal(t, []model.ConfigItem{{Name: "N", Value: "4", Source: leaf.Source}}, leaf.LocalConfigs)
	assert.Equal(t, model.ReqServ{
		Name:      "rd",
		Handshake: true,
		Args:      []model.Argument{{Name: "addr", Type: "uint32"}},
		Rets:      []model.Argument{{Name: "data", Type: "word"}},
	}, leaf.Requests["rd"])
	assert.Equal(t, "word", leaf.PipeInputs["in"].Type)
	assert.Equal(t, "r = v;", leaf.ServiceCodes["wr"].Code)

	top := p.Modules[1]
	assert.Equal(t, "top level", top.Comment)
	assert.Equal(t, "design.hcl:50", top.Source.String())
	assert.Equal(t, map[string]string{"N": "DEPTH * 2"}, top.Instances["u1"].Overrides)
	assert.Nil(t, top.Instances["u0"].Overrides)
	assert.Equal(t, model.PipeInstance{Name: "p0", Type: "word", BufferSize: "DEPTH", Latency: "1"}, top.PipeInstances["p0"])
	assert.Equal(t, []model.ReqConn{{FromInstance: "u0", FromPort: "rd", ToPort: "mem"}}, top.ReqConns)
	assert.Equal(t, []model.PipeConn{{Instance: "u0", Port: "out", Pipe: "p0"}}, top.PipeConns)
	assert.Equal(t, []model.SeqConn{{From: "u0", To: "u1"}}, top.StallConns)
	assert.Equal(t, []model.SeqConn{{From: model.TopInterface, To: "u0"}}, top.UpdateConstraints)
	assert.Equal(t, "@DEPTH", top.StorageNexts["cnt"].UintLength)
	assert.Equal(t, []model.RequestCode{{Instance: "u0", Request: "rd", Code: "return 0;"}}, top.RequestCodes)
}

func TestLoadSource_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		code vulerr.Code
	}{
		{name: "syntax", src: `config "A" {`, code: vulerr.ProjectParse},
		{name: "unknown block", src: `widget "A" {}`, code: vulerr.ProjectDecode},
		{name: "missing value", src: `config "A" {}`, code: vulerr.ProjectDecode},
		{name: "missing local value", src: "module \"m\" {\n  config \"N\" {}\n}", code: vulerr.ProjectDecode},
		{name: "interpolation", src: `config "A" { value = "${B}" }`, code: vulerr.ProjectDecode},
		{
			name: "duplicate request",
			src: `module "m" {
  request "r" {}
  request "r" {}
}`,
			code: vulerr.ProjectDecode,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource(context.Background(), "bad.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.True(t, vulerr.Is(err, tc.code), err.Error())
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "modules")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`config "B" { value = 2 }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`config "A" { value = 1 }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "m.hcl"), []byte(`module "m" {}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`not hcl`), 0o600))

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, p.Configs, 2)
	assert.Equal(t, "A", p.Configs[0].Name)
	assert.Equal(t, "B", p.Configs[1].Name)
	assert.Equal(t, filepath.Join(dir, "a.hcl"), p.Configs[0].Source.FilePath)
	require.Len(t, p.Modules, 1)
	assert.Equal(t, "m", p.Modules[0].Name)

	t.Run("single file", func(t *testing.T) {
		p, err := NewLoader().Load(context.Background(), filepath.Join(dir, "a.hcl"), filepath.Join(dir, "a.hcl"))
		require.NoError(t, err)
		assert.Len(t, p.Configs, 1)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error accessing path")
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "notes.txt"))
		require.Error(t, err)
	})
}

func TestWriter_RoundTrip(t *testing.T) {
	p := loadDesign(t)

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(context.Background(), &buf, p))

	reloaded, err := NewLoader().LoadSource(context.Background(), "out.hcl", buf.Bytes())
	require.NoError(t, err, buf.String())

	if diff := cmp.Diff(p, reloaded, ignoreSource); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Literals(t *testing.T) {
	p := model.NewProject()
	p.Configs = []model.ConfigItem{
		{Name: "A", Value: "32"},
		{Name: "B", Value: "007"},
		{Name: "C", Value: "A * 2"},
	}
	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(context.Background(), &buf, p))

	out := buf.String()
	assert.Contains(t, out, "value = 32\n")
	assert.Contains(t, out, `value = "007"`)
	assert.Contains(t, out, `value = "A * 2"`)
}
