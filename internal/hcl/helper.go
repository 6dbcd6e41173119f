package hcl

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. For omitted optional attributes gohcl fills in a zero-width
// placeholder expression, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	if !defined {
		ctxlog.FromContext(ctx).Debug("Attribute omitted.", "attribute", attrName, "hcl_range", r.String())
	}
	return defined
}

// exprText returns the design-language source of an attribute. Literal
// numbers and quoted strings are evaluated to their text; any other HCL
// expression (WIDTH * 2, -1, a ? b : c) is taken verbatim from the file.
func (d *fileDecoder) exprText(expr hcl.Expression, attrName string) (string, error) {
	if !isExprDefined(d.ctx, expr, attrName) {
		return "", nil
	}
	switch expr.(type) {
	case *hclsyntax.LiteralValueExpr, *hclsyntax.TemplateExpr, *hclsyntax.TemplateWrapExpr:
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return "", d.decodeErr(expr.Range(), "attribute %q: %s", attrName, diags.Error())
		}
		s, err := valueText(val)
		if err != nil {
			return "", d.decodeErr(expr.Range(), "attribute %q: %s", attrName, err)
		}
		return s, nil
	}
	return strings.TrimSpace(string(expr.Range().SliceBytes(d.src))), nil
}

// valueText renders a known cty value as text. Null becomes "".
func valueText(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	sv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	var s string
	if err := gocty.FromCtyValue(sv, &s); err != nil {
		return "", err
	}
	return s, nil
}

// exprTexts decodes a tuple attribute such as dims = ["DEPTH", 4].
func (d *fileDecoder) exprTexts(expr hcl.Expression, attrName string) ([]string, error) {
	if !isExprDefined(d.ctx, expr, attrName) {
		return nil, nil
	}
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, d.decodeErr(expr.Range(), "attribute %q: %s", attrName, diags.Error())
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := d.exprText(item, attrName)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// exprTextMap decodes an object attribute such as overrides = { N = 8 }.
func (d *fileDecoder) exprTextMap(expr hcl.Expression, attrName string) (map[string]string, error) {
	if !isExprDefined(d.ctx, expr, attrName) {
		return nil, nil
	}
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, d.decodeErr(expr.Range(), "attribute %q: %s", attrName, diags.Error())
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key := hcl.ExprAsKeyword(pair.Key)
		if key == "" {
			kv, kdiags := pair.Key.Value(nil)
			if kdiags.HasErrors() {
				return nil, d.decodeErr(pair.Key.Range(), "attribute %q: keys must be names", attrName)
			}
			var err error
			if key, err = valueText(kv); err != nil {
				return nil, d.decodeErr(pair.Key.Range(), "attribute %q: %s", attrName, err)
			}
		}
		if _, dup := out[key]; dup {
			return nil, d.decodeErr(pair.Key.Range(), "attribute %q: duplicate key %q", attrName, key)
		}
		s, err := d.exprText(pair.Value, attrName+"."+key)
		if err != nil {
			return nil, err
		}
		out[key] = s
	}
	return out, nil
}

// blockLines maps "type label" of each top-level block to the line it
// starts on.
func blockLines(body hcl.Body) map[string]int {
	out := make(map[string]int)
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return out
	}
	for _, b := range sb.Blocks {
		if len(b.Labels) == 0 {
			continue
		}
		out[b.Type+" "+b.Labels[0]] = b.DefRange().Start.Line
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
