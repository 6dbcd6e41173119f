// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Module structure and its parts. A Module is the unit
// the structural validator works on: it declares its own interface (requests,
// services, pipe ports), its internal state (storages, local configs, local
// bundles) and its children (instances, pipe instances) together with the
// connections between all of them.
package model

import "slices"

// Argument is one typed argument or return value of a request or service.
type Argument struct {
	Name    string
	Type    string
	Comment string
}

// ReqServ is a request or service port signature.
type ReqServ struct {
	Name      string
	Comment   string
	Args      []Argument
	Rets      []Argument
	Handshake bool
}

// Match reports whether two ports can be connected: argument and return type
// sequences are equal and the handshake flag agrees. Names and comments are
// not compared.
func (r ReqServ) Match(o ReqServ) bool {
	if r.Handshake != o.Handshake {
		return false
	}
	return sameTypes(r.Args, o.Args) && sameTypes(r.Rets, o.Rets)
}

// MultiConnectSafe reports whether a service can be driven by any number of
// requests: it neither handshakes nor returns anything.
func (r ReqServ) MultiConnectSafe() bool {
	return !r.Handshake && len(r.Rets) == 0
}

func sameTypes(a, b []Argument) bool {
	return slices.EqualFunc(a, b, func(x, y Argument) bool { return x.Type == y.Type })
}

// PipePort is a typed pipe input or output of a module.
type PipePort struct {
	Name    string
	Type    string
	Comment string
}

// Instance binds a child module under a local name. Overrides maps the
// child's local config names to expressions evaluated in the parent.
type Instance struct {
	Name      string
	Module    string
	Comment   string
	Overrides map[string]string
}

// PipeInstance is a buffered channel declared inside a module. The size and
// latency fields are expressions.
type PipeInstance struct {
	Name       string
	Type       string
	Comment    string
	InputSize  string
	OutputSize string
	BufferSize string
	Latency    string
	Handshake  bool
	Valid      bool
}

// PipeClearService is the implicit service every pipe instance offers. It
// takes no arguments and returns nothing.
const PipeClearService = "clear"

// ReqConn connects a caller to a callee. An empty instance names the module's
// own interface: a top-level service is a caller (its calls are forwarded
// inward) and a top-level request is a callee (calls leave the module).
type ReqConn struct {
	FromInstance string
	FromPort     string
	ToInstance   string
	ToPort       string
}

// PipeConn attaches a child instance's pipe port to Pipe, which names either a
// top-level pipe port or a pipe instance.
type PipeConn struct {
	Instance string
	Port     string
	Pipe     string
}

// SeqConn is a directed edge between two sequencing nodes: instance names,
// tick code block names or TopInterface. For stall connections From's stall
// propagates to To; for update constraints From is updated before To.
type SeqConn struct {
	From string
	To   string
}

// TickCode is a free-standing block of code run every tick.
type TickCode struct {
	Name    string
	Code    string
	Comment string
}

// ServiceCode is an inline implementation of a top-level service.
type ServiceCode struct {
	Service string
	Code    string
}

// RequestCode is an inline implementation of a child instance's request.
type RequestCode struct {
	Instance string
	Request  string
	Code     string
}

// Module is a component definition.
type Module struct {
	Name    string
	Comment string

	LocalConfigs []ConfigItem
	LocalBundles map[string]BundleItem

	Requests    map[string]ReqServ
	Services    map[string]ReqServ
	PipeInputs  map[string]PipePort
	PipeOutputs map[string]PipePort

	Instances     map[string]Instance
	PipeInstances map[string]PipeInstance

	ReqConns          []ReqConn
	PipeConns         []PipeConn
	StallConns        []SeqConn
	UpdateConstraints []SeqConn

	Storages     map[string]BundleMember
	StorageNexts map[string]BundleMember
	StorageTmps  map[string]BundleMember

	TickCodes    map[string]TickCode
	ServiceCodes map[string]ServiceCode
	RequestCodes []RequestCode

	Source *FSInfo
}

// NewModule returns a Module with every map initialized.
func NewModule(name string) *Module {
	return &Module{
		Name:          name,
		LocalBundles:  map[string]BundleItem{},
		Requests:      map[string]ReqServ{},
		Services:      map[string]ReqServ{},
		PipeInputs:    map[string]PipePort{},
		PipeOutputs:   map[string]PipePort{},
		Instances:     map[string]Instance{},
		PipeInstances: map[string]PipeInstance{},
		Storages:      map[string]BundleMember{},
		StorageNexts:  map[string]BundleMember{},
		StorageTmps:   map[string]BundleMember{},
		TickCodes:     map[string]TickCode{},
		ServiceCodes:  map[string]ServiceCode{},
	}
}

// LocalConfig returns the local config called name.
func (m *Module) LocalConfig(name string) (ConfigItem, bool) {
	for _, c := range m.LocalConfigs {
		if c.Name == name {
			return c, true
		}
	}
	return ConfigItem{}, false
}

// ChildModules returns the set of module names instantiated by m.
func (m *Module) ChildModules() map[string]struct{} {
	out := make(map[string]struct{}, len(m.Instances))
	for _, inst := range m.Instances {
		out[inst.Module] = struct{}{}
	}
	return out
}
