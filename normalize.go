package kvlite

import "golang.org/x/text/unicode/norm"

// normKey applies NFC normalization when the Store was built with
// WithNormalizedKeys. Composed and decomposed spellings of the same
// text then address the same row.
func (s *Store) normKey(k string) string {
	if !s.normalize {
		return k
	}
	return norm.NFC.String(k)
}

// expr rewrites every key carried inside an access expression through
// normKey, so normalization applies uniformly to literals and
// predicates. Returns e unchanged when normalization is off.
func (s *Store) expr(e Expr) Expr {
	if !s.normalize {
		return e
	}
	return normalizeExpr(e)
}

func normalizeExpr(e Expr) Expr {
	switch expr := e.(type) {
	case Key:
		return Key(norm.NFC.String(string(expr)))
	case In:
		out := make(In, len(expr))
		for i, k := range expr {
			out[i] = norm.NFC.String(k)
		}
		return out
	case Cmp:
		return Cmp{Op: expr.Op, Value: norm.NFC.String(expr.Value)}
	case Prefix:
		return Prefix(norm.NFC.String(string(expr)))
	case And:
		out := make(And, len(expr))
		for i, sub := range expr {
			out[i] = normalizeExpr(sub)
		}
		return out
	case Or:
		out := make(Or, len(expr))
		for i, sub := range expr {
			out[i] = normalizeExpr(sub)
		}
		return out
	case Not:
		return Not{Expr: normalizeExpr(expr.Expr)}
	default:
		return e
	}
}
