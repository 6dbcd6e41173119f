package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a project file may contain.
type fileRoot struct {
	Configs []*configBlock `hcl:"config,block"`
	Bundles []*bundleBlock `hcl:"bundle,block"`
	Modules []*moduleBlock `hcl:"module,block"`
}

// configBlock is a config item. Value may be an HCL number, a quoted
// expression or a bare HCL expression such as WIDTH * 2.
type configBlock struct {
	Name    string         `hcl:"name,label"`
	Value   hcl.Expression `hcl:"value"`
	Group   *string        `hcl:"group,optional"`
	Comment *string        `hcl:"comment,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

type bundleBlock struct {
	Name    string         `hcl:"name,label"`
	Tags    []string       `hcl:"tags,optional"`
	Alias   *bool          `hcl:"alias,optional"`
	Comment *string        `hcl:"comment,optional"`
	Members []*memberBlock `hcl:"member,block"`
	Enums   []*enumBlock   `hcl:"enum,block"`
}

// memberBlock describes a bundle member or a storage.
type memberBlock struct {
	Name    string         `hcl:"name,label"`
	Type    *string        `hcl:"type,optional"`
	Length  hcl.Expression `hcl:"length,optional"`
	Dims    hcl.Expression `hcl:"dims,optional"`
	Value   hcl.Expression `hcl:"value,optional"`
	Comment *string        `hcl:"comment,optional"`
}

type enumBlock struct {
	Name    string         `hcl:"name,label"`
	Value   hcl.Expression `hcl:"value,optional"`
	Comment *string        `hcl:"comment,optional"`
}

type moduleBlock struct {
	Name    string  `hcl:"name,label"`
	Comment *string `hcl:"comment,optional"`

	Configs []*configBlock `hcl:"config,block"`
	Bundles []*bundleBlock `hcl:"bundle,block"`

	Requests    []*reqServBlock `hcl:"request,block"`
	Services    []*reqServBlock `hcl:"service,block"`
	PipeInputs  []*portBlock    `hcl:"pipe_input,block"`
	PipeOutputs []*portBlock    `hcl:"pipe_output,block"`

	Instances []*instanceBlock `hcl:"instance,block"`
	Pipes     []*pipeBlock     `hcl:"pipe,block"`

	Connects     []*connectBlock     `hcl:"connect,block"`
	PipeConnects []*pipeConnectBlock `hcl:"pipe_connect,block"`
	Stalls       []*stallBlock       `hcl:"stall,block"`
	Updates      []*updateBlock      `hcl:"update,block"`

	Storages     []*memberBlock `hcl:"storage,block"`
	StorageNexts []*memberBlock `hcl:"storage_next,block"`
	StorageTmps  []*memberBlock `hcl:"storage_tmp,block"`

	Ticks        []*tickBlock        `hcl:"tick,block"`
	ServiceCodes []*serviceCodeBlock `hcl:"service_code,block"`
	RequestCodes []*requestCodeBlock `hcl:"request_code,block"`
}

type reqServBlock struct {
	Name      string      `hcl:"name,label"`
	Handshake *bool       `hcl:"handshake,optional"`
	Comment   *string     `hcl:"comment,optional"`
	Args      []*argBlock `hcl:"arg,block"`
	Rets      []*argBlock `hcl:"ret,block"`
}

type argBlock struct {
	Name    string  `hcl:"name,label"`
	Type    string  `hcl:"type"`
	Comment *string `hcl:"comment,optional"`
}

type portBlock struct {
	Name    string  `hcl:"name,label"`
	Type    string  `hcl:"type"`
	Comment *string `hcl:"comment,optional"`
}

type instanceBlock struct {
	Name      string         `hcl:"name,label"`
	Module    string         `hcl:"module"`
	Overrides hcl.Expression `hcl:"overrides,optional"`
	Comment   *string        `hcl:"comment,optional"`
}

type pipeBlock struct {
	Name       string         `hcl:"name,label"`
	Type       string         `hcl:"type"`
	InputSize  hcl.Expression `hcl:"input_size,optional"`
	OutputSize hcl.Expression `hcl:"output_size,optional"`
	BufferSize hcl.Expression `hcl:"buffer_size,optional"`
	Latency    hcl.Expression `hcl:"latency,optional"`
	Handshake  *bool          `hcl:"handshake,optional"`
	Valid      *bool          `hcl:"valid,optional"`
	Comment    *string        `hcl:"comment,optional"`
}

// connectBlock joins a request to a service. Endpoints are "instance.port",
// or a bare "port" for the module's own interface.
type connectBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type pipeConnectBlock struct {
	Instance string `hcl:"instance"`
	Port     string `hcl:"port"`
	Pipe     string `hcl:"pipe"`
}

type stallBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type updateBlock struct {
	Before string `hcl:"before"`
	After  string `hcl:"after"`
}

type tickBlock struct {
	Name    string  `hcl:"name,label"`
	Code    string  `hcl:"code"`
	Comment *string `hcl:"comment,optional"`
}

type serviceCodeBlock struct {
	Service string `hcl:"service,label"`
	Code    string `hcl:"code"`
}

type requestCodeBlock struct {
	Instance string `hcl:"instance,label"`
	Request  string `hcl:"request,label"`
	Code     string `hcl:"code"`
}
