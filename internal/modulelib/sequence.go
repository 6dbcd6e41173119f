package modulelib

import (
	"strings"

	"github.com/specialistvlad/vuldesign/internal/dag"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// sequenceNodes returns the instance names, TopInterface and the tick code
// block names.
func sequenceNodes(m *model.Module) []string {
	nodes := append([]string{model.TopInterface}, sortedKeys(m.Instances)...)
	return append(nodes, sortedKeys(m.TickCodes)...)
}

func newSequenceGraph(m *model.Module) *dag.Graph {
	g := dag.New()
	for _, n := range sequenceNodes(m) {
		g.AddNode(n)
	}
	return g
}

// addSequenceEdge checks and adds one declared edge. kind names the
// connection family for error messages.
func addSequenceEdge(m *model.Module, g *dag.Graph, c model.SeqConn, kind string) error {
	for _, end := range []string{c.From, c.To} {
		if !g.HasNode(end) {
			return vulerr.New(vulerr.SeqNodeNotFound, "module %q: %s connection %s -> %s names unknown node %q",
				m.Name, kind, c.From, c.To, end)
		}
	}
	if c.From == c.To {
		return vulerr.New(vulerr.SeqSelfLoop, "module %q: %s connection %s -> %s is a self loop", m.Name, kind, c.From, c.To)
	}
	return g.AddEdge(c.From, c.To)
}

// addUpdateEdge adds c to the update-sequence graph. An endpoint equal to
// TopInterface stands for the top interface and every tick code block.
func addUpdateEdge(m *model.Module, g *dag.Graph, c model.SeqConn, kind string) error {
	if err := addSequenceEdge(m, g, c, kind); err != nil {
		return err
	}
	ticks := sortedKeys(m.TickCodes)
	froms, tos := []string{c.From}, []string{c.To}
	if c.From == model.TopInterface {
		froms = append(froms, ticks...)
	}
	if c.To == model.TopInterface {
		tos = append(tos, ticks...)
	}
	for _, f := range froms {
		for _, t := range tos {
			if f == t {
				continue
			}
			if err := g.AddEdge(f, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildUpdateGraph builds the update-sequence graph: declared update
// constraints, every stall connection folded in as an ordering constraint,
// and the extra edges.
func buildUpdateGraph(m *model.Module, extra []model.SeqConn) (*dag.Graph, error) {
	g := newSequenceGraph(m)
	for _, c := range m.StallConns {
		if err := addUpdateEdge(m, g, c, "stall"); err != nil {
			return nil, err
		}
	}
	for _, c := range m.UpdateConstraints {
		if err := addUpdateEdge(m, g, c, "update"); err != nil {
			return nil, err
		}
	}
	for _, c := range extra {
		if err := addUpdateEdge(m, g, c, "extra update"); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// checkSequence is phase 6.
func (v *validator) checkSequence() error {
	stall := newSequenceGraph(v.m)
	for _, c := range v.m.StallConns {
		if err := addSequenceEdge(v.m, stall, c, "stall"); err != nil {
			return err
		}
	}
	if _, err := stall.Sort(); err != nil {
		return cycleError(v.m, vulerr.StallCircular, "stall connections", err)
	}

	update, err := buildUpdateGraph(v.m, nil)
	if err != nil {
		return err
	}
	if _, err := update.Sort(); err != nil {
		return cycleError(v.m, vulerr.UpdateCircular, "update sequence", err)
	}
	return nil
}

func cycleError(m *model.Module, code vulerr.Code, what string, err error) error {
	if ce, ok := err.(*dag.CycleError); ok {
		return vulerr.New(code, "module %q: %s are circular: %s", m.Name, what, strings.Join(ce.Nodes, ", "))
	}
	return vulerr.Wrap(code, err, "module %q: %s", m.Name, what)
}

// InstanceUpdateOrder returns the deterministic update order of the module's
// sequencing nodes: TopInterface, instances and tick code blocks. Stall
// connections, update constraints and the extra edges all order their
// source before their target.
func (l *Library) InstanceUpdateOrder(name string, extra []model.SeqConn) ([]string, error) {
	m, err := l.Get(name)
	if err != nil {
		return nil, err
	}
	g, err := buildUpdateGraph(m, extra)
	if err != nil {
		return nil, err
	}
	order, err := g.Sort()
	if err != nil {
		return nil, cycleError(m, vulerr.UpdateCircular, "update sequence", err)
	}
	return order, nil
}
