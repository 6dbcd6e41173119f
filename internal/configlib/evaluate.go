package configlib

import (
	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Evaluate computes the value of src. Identifiers are resolved against
// overrides first and then against the library's items. Every name that was
// substituted is recorded in visited when visited is non-nil.
//
// Evaluate relies on the library's reference graph being acyclic and does no
// cycle detection of its own. Override values are concrete numbers, so they
// cannot introduce a cycle.
func (l *Library) Evaluate(src string, overrides map[string]int64, visited map[string]struct{}) (int64, error) {
	return evaluate(l.entries, src, overrides, visited)
}

func evaluate(entries map[string]*Entry, src string, overrides map[string]int64, visited map[string]struct{}) (int64, error) {
	toks, err := expr.Tokenize(src)
	if err != nil {
		return 0, vulerr.Wrap(vulerr.ConfigExprInvalid, err, "invalid expression %q", src)
	}

	var undefined error
	toks, err = expr.Substitute(toks, func(name string) (int64, error) {
		if v, ok := overrides[name]; ok {
			mark(visited, name)
			return v, nil
		}
		if e, ok := entries[name]; ok {
			mark(visited, name)
			return e.RealValue, nil
		}
		undefined = vulerr.New(vulerr.ConfigUndefined, "undefined config identifier %q in %q%s",
			name, src, vulerr.DidYouMean(name, candidates(entries, overrides)))
		return 0, undefined
	})
	if undefined != nil {
		return 0, undefined
	}
	if err != nil {
		return 0, vulerr.Wrap(vulerr.ConfigEvalFailed, err, "cannot evaluate %q", src)
	}

	node, err := expr.Parse(toks)
	if err != nil {
		return 0, vulerr.Wrap(vulerr.ConfigExprInvalid, err, "invalid expression %q", src)
	}
	v, err := expr.Eval(node, nil)
	if err != nil {
		return 0, vulerr.Wrap(vulerr.ConfigEvalFailed, err, "cannot evaluate %q", src)
	}
	return v, nil
}

func mark(visited map[string]struct{}, name string) {
	if visited != nil {
		visited[name] = struct{}{}
	}
}

func candidates(entries map[string]*Entry, overrides map[string]int64) []string {
	out := make([]string, 0, len(entries)+len(overrides))
	for name := range entries {
		out = append(out, name)
	}
	for name := range overrides {
		out = append(out, name)
	}
	return out
}
