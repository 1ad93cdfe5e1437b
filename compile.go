package kvlite

import (
	"fmt"
	"strings"
)

// compileExpr translates an access expression into a parameterized SQL
// WHERE fragment over the key column.
//
// Returns (fragment, params, single). single is true only for a bare
// Key at the top level; it decides whether a zero-row read is a missing
// key (error) or an empty match set (empty sequence).
//
// Values are always bound through ? placeholders, never interpolated.
func compileExpr(e Expr) (string, []any, bool, error) {
	if k, ok := e.(Key); ok {
		return "key = ?", []any{string(k)}, true, nil
	}
	frag, params, err := compilePredicate(e)
	if err != nil {
		return "", nil, false, err
	}
	return frag, params, false, nil
}

// compilePredicate compiles any expression as a set predicate. A nested
// Key compiles to plain equality here; the single-key flag applies only
// at the top level.
func compilePredicate(e Expr) (string, []any, error) {
	switch expr := e.(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil expression")
	case Key:
		return "key = ?", []any{string(expr)}, nil
	case In:
		return compileIn(expr)
	case Cmp:
		return compileCmp(expr)
	case Prefix:
		return "key LIKE ? ESCAPE '\\'", []any{escapeLike(string(expr)) + "%"}, nil
	case And:
		return compileConjunction([]Expr(expr), " AND ", "1 = 1")
	case Or:
		return compileConjunction([]Expr(expr), " OR ", "1 = 0")
	case Not:
		frag, params, err := compilePredicate(expr.Expr)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + frag + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// compileIn compiles membership to "key IN (?, ...)".
// An empty set compiles to a never-true predicate rather than the
// invalid SQL "IN ()".
func compileIn(in In) (string, []any, error) {
	if len(in) == 0 {
		return "1 = 0", nil, nil
	}
	params := make([]any, len(in))
	for i, k := range in {
		params[i] = k
	}
	placeholders := strings.Repeat(", ?", len(in))[2:]
	return "key IN (" + placeholders + ")", params, nil
}

func compileCmp(c Cmp) (string, []any, error) {
	switch c.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return fmt.Sprintf("key %s ?", c.Op), []any{c.Value}, nil
	default:
		return "", nil, fmt.Errorf("unsupported comparison operator: %q", c.Op)
	}
}

// compileConjunction joins member predicates with the given operator.
// empty is the fragment for the zero-member case (vacuous truth for
// AND, vacuous falsity for OR).
func compileConjunction(exprs []Expr, op, empty string) (string, []any, error) {
	if len(exprs) == 0 {
		return empty, nil, nil
	}
	var frags []string
	var allParams []any
	for _, e := range exprs {
		frag, params, err := compilePredicate(e)
		if err != nil {
			return "", nil, err
		}
		frags = append(frags, "("+frag+")")
		allParams = append(allParams, params...)
	}
	return strings.Join(frags, op), allParams, nil
}

// escapeLike escapes LIKE metacharacters so a Prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
