package modulelib

import (
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

type portKey struct {
	instance string
	port     string
}

func (k portKey) String() string {
	if k.instance == "" {
		return k.port
	}
	return k.instance + "." + k.port
}

var pipeClear = model.ReqServ{Name: model.PipeClearService}

// resolveCaller resolves the calling side of a request connection: a
// top-level service or a child instance's request.
func (v *validator) resolveCaller(k portKey) (model.ReqServ, error) {
	if k.instance == "" {
		if s, ok := v.m.Services[k.port]; ok {
			return s, nil
		}
		if _, ok := v.m.Requests[k.port]; ok {
			return model.ReqServ{}, v.errorf(vulerr.ReqEndpointDirection, "top-level request %q cannot start a connection", k.port)
		}
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "no top-level service %q", k.port)
	}
	if _, ok := v.m.PipeInstances[k.instance]; ok {
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointDirection, "pipe instance %q cannot start a connection", k.instance)
	}
	child, ok := v.child(k.instance)
	if !ok {
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "no instance %q", k.instance)
	}
	if r, ok := child.Requests[k.port]; ok {
		return r, nil
	}
	if _, ok := child.Services[k.port]; ok {
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointDirection, "service %s cannot start a connection", k)
	}
	return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "instance %q of module %q has no request %q", k.instance, child.Name, k.port)
}

// resolveCallee resolves the called side of a request connection: a child
// instance's service, a top-level request or a pipe instance's clear
// service.
func (v *validator) resolveCallee(k portKey) (model.ReqServ, error) {
	if k.instance == "" {
		if r, ok := v.m.Requests[k.port]; ok {
			return r, nil
		}
		if _, ok := v.m.Services[k.port]; ok {
			return model.ReqServ{}, v.errorf(vulerr.ReqEndpointDirection, "top-level service %q cannot end a connection", k.port)
		}
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "no top-level request %q", k.port)
	}
	if _, ok := v.m.PipeInstances[k.instance]; ok {
		if k.port == model.PipeClearService {
			return pipeClear, nil
		}
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "pipe instance %q only offers %q, not %q", k.instance, model.PipeClearService, k.port)
	}
	child, ok := v.child(k.instance)
	if !ok {
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "no instance %q", k.instance)
	}
	if s, ok := child.Services[k.port]; ok {
		return s, nil
	}
	if _, ok := child.Requests[k.port]; ok {
		return model.ReqServ{}, v.errorf(vulerr.ReqEndpointDirection, "request %s cannot end a connection", k)
	}
	return model.ReqServ{}, v.errorf(vulerr.ReqEndpointNotFound, "instance %q of module %q has no service %q", k.instance, child.Name, k.port)
}

// checkReqServ is phase 4.
func (v *validator) checkReqServ() error {
	counts := make(map[portKey]int)
	for _, c := range v.m.ReqConns {
		from := portKey{c.FromInstance, c.FromPort}
		to := portKey{c.ToInstance, c.ToPort}
		caller, err := v.resolveCaller(from)
		if err != nil {
			return err
		}
		callee, err := v.resolveCallee(to)
		if err != nil {
			return err
		}
		if !caller.Match(callee) {
			return v.errorf(vulerr.ReqSignatureMismatch, "connection %s -> %s joins mismatched signatures", from, to)
		}
		counts[from]++
	}

	for _, name := range sortedKeys(v.m.ServiceCodes) {
		if _, ok := v.m.Services[name]; !ok {
			return v.errorf(vulerr.CodeTargetNotFound, "service code for unknown service %q", name)
		}
	}
	requestCodes := make(map[portKey]bool, len(v.m.RequestCodes))
	for _, rc := range v.m.RequestCodes {
		k := portKey{rc.Instance, rc.Request}
		child, ok := v.child(rc.Instance)
		if !ok {
			return v.errorf(vulerr.CodeTargetNotFound, "request code for unknown instance %q", rc.Instance)
		}
		if _, ok := child.Requests[rc.Request]; !ok {
			return v.errorf(vulerr.CodeTargetNotFound, "request code for unknown request %s", k)
		}
		requestCodes[k] = true
	}

	for _, name := range sortedKeys(v.m.Services) {
		k := portKey{"", name}
		_, coded := v.m.ServiceCodes[name]
		if err := v.checkMultiplicity(k, v.m.Services[name], counts[k], coded, vulerr.ServiceUnconnected, "service"); err != nil {
			return err
		}
	}
	for _, inst := range sortedKeys(v.m.Instances) {
		child, _ := v.child(inst)
		for _, name := range sortedKeys(child.Requests) {
			k := portKey{inst, name}
			if err := v.checkMultiplicity(k, child.Requests[name], counts[k], requestCodes[k], vulerr.RequestUnconnected, "request"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) checkMultiplicity(k portKey, port model.ReqServ, n int, coded bool, unconnected vulerr.Code, kind string) error {
	if n == 0 && !coded {
		return v.errorf(unconnected, "%s %s is neither connected nor implemented", kind, k)
	}
	if port.MultiConnectSafe() {
		return nil
	}
	if n > 1 {
		return v.errorf(vulerr.ReqMultipleConnection, "%s %s has %d connections, at most one is allowed", kind, k, n)
	}
	if n == 1 && coded {
		return v.errorf(vulerr.ConnectedAndCoded, "%s %s is both connected and implemented", kind, k)
	}
	return nil
}

type pipeDir int

const (
	pipeIn pipeDir = iota
	pipeOut
)

func (d pipeDir) String() string {
	if d == pipeIn {
		return "input"
	}
	return "output"
}

// checkPipes is phase 5.
func (v *validator) checkPipes() error {
	counts := make(map[portKey]int)
	for _, c := range v.m.PipeConns {
		k := portKey{c.Instance, c.Port}
		child, ok := v.child(c.Instance)
		if !ok {
			return v.errorf(vulerr.PipeEndpointNotFound, "pipe connection names unknown instance %q", c.Instance)
		}
		in, isIn := child.PipeInputs[c.Port]
		out, isOut := child.PipeOutputs[c.Port]
		var dir pipeDir
		var port model.PipePort
		switch {
		case isIn && isOut:
			return v.errorf(vulerr.PipePortAmbiguous, "pipe port %s is both an input and an output", k)
		case isIn:
			dir, port = pipeIn, in
		case isOut:
			dir, port = pipeOut, out
		default:
			return v.errorf(vulerr.PipeEndpointNotFound, "instance %q of module %q has no pipe port %q", c.Instance, child.Name, c.Port)
		}

		if err := v.checkPipeTarget(k, dir, port, c.Pipe); err != nil {
			return err
		}
		counts[k]++
	}

	for _, inst := range sortedKeys(v.m.Instances) {
		child, _ := v.child(inst)
		ports := append(sortedKeys(child.PipeInputs), sortedKeys(child.PipeOutputs)...)
		for _, name := range ports {
			k := portKey{inst, name}
			switch n := counts[k]; {
			case n == 0:
				return v.errorf(vulerr.PipePortUnconnected, "pipe port %s is not connected", k)
			case n > 1:
				return v.errorf(vulerr.PipePortMultiConnect, "pipe port %s is connected %d times", k, n)
			}
		}
	}
	return nil
}

func (v *validator) checkPipeTarget(k portKey, dir pipeDir, port model.PipePort, pipe string) error {
	if top, ok := v.m.PipeInputs[pipe]; ok {
		if dir != pipeIn {
			return v.errorf(vulerr.PipeDirectionInvalid, "pipe %s %s cannot connect to top-level pipe input %q", dir, k, pipe)
		}
		return v.matchPipeType(k, port, top.Type, pipe)
	}
	if top, ok := v.m.PipeOutputs[pipe]; ok {
		if dir != pipeOut {
			return v.errorf(vulerr.PipeDirectionInvalid, "pipe %s %s cannot connect to top-level pipe output %q", dir, k, pipe)
		}
		return v.matchPipeType(k, port, top.Type, pipe)
	}
	if p, ok := v.m.PipeInstances[pipe]; ok {
		return v.matchPipeType(k, port, p.Type, pipe)
	}
	return v.errorf(vulerr.PipeEndpointNotFound, "pipe port %s connects to unknown pipe %q", k, pipe)
}

func (v *validator) matchPipeType(k portKey, port model.PipePort, want, pipe string) error {
	if port.Type != want {
		return v.errorf(vulerr.PipeTypeMismatch, "pipe port %s has type %q but %q carries %q", k, port.Type, pipe, want)
	}
	return nil
}
