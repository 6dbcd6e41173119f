package expr

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ExtractIdentifiers validates src as an expression and returns the set of
// identifiers it mentions.
func ExtractIdentifiers(src string) (map[string]struct{}, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	if _, err := Parse(toks); err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	for _, tok := range toks {
		if tok.Kind == Ident {
			ids[tok.Text] = struct{}{}
		}
	}
	return ids, nil
}

// SortedIdentifiers is ExtractIdentifiers with the result as a sorted slice.
func SortedIdentifiers(src string) ([]string, error) {
	ids, err := ExtractIdentifiers(src)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Substitute replaces every identifier token with a Number token carrying the
// resolved value. The first resolution failure is returned as an EvalError at
// the identifier's position.
func Substitute(toks []Token, resolve Resolver) ([]Token, error) {
	out := make([]Token, len(toks))
	for i, tok := range toks {
		if tok.Kind != Ident {
			out[i] = tok
			continue
		}
		if resolve == nil {
			return nil, evalErr(tok.Pos, "undefined identifier %q", tok.Text)
		}
		v, err := resolve(tok.Text)
		if err != nil {
			return nil, &Error{Kind: EvalError, Pos: tok.Pos, Index: -1, Msg: err.Error(), Err: err}
		}
		out[i] = Token{Kind: Number, Text: strconv.FormatInt(v, 10), Pos: tok.Pos}
	}
	return out, nil
}

// RenameIdentifier replaces every whole identifier equal to from with to.
// Text that is not an identifier token is preserved byte for byte. When src
// does not tokenize, a word-boundary replacement is used instead.
func RenameIdentifier(src, from, to string) (string, bool) {
	if from == to || !strings.Contains(src, from) {
		return src, false
	}
	toks, err := Tokenize(src)
	if err != nil {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`)
		out := re.ReplaceAllLiteralString(src, to)
		return out, out != src
	}

	var sb strings.Builder
	last, changed := 0, false
	for _, tok := range toks {
		if tok.Kind != Ident || tok.Text != from {
			continue
		}
		sb.WriteString(src[last:tok.Pos])
		sb.WriteString(to)
		last = tok.Pos + len(tok.Text)
		changed = true
	}
	if !changed {
		return src, false
	}
	sb.WriteString(src[last:])
	return sb.String(), true
}
