package kvlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileExpr_KeyIsSingle(t *testing.T) {
	where, params, single, err := compileExpr(Key("a"))
	require.NoError(t, err)
	assert.True(t, single)
	assert.Equal(t, "key = ?", where)
	assert.Equal(t, []any{"a"}, params)
}

func TestCompileExpr_Predicates(t *testing.T) {
	cases := []struct {
		name       string
		expr       Expr
		wantSQL    string
		wantParams []any
	}{
		{"in", In{"a", "c"}, "key IN (?, ?)", []any{"a", "c"}},
		{"in single", In{"a"}, "key IN (?)", []any{"a"}},
		{"empty in never matches", In{}, "1 = 0", nil},
		{"cmp lt", Cmp{Op: OpLt, Value: "m"}, "key < ?", []any{"m"}},
		{"cmp ge", Cmp{Op: OpGe, Value: "m"}, "key >= ?", []any{"m"}},
		{"cmp ne", Cmp{Op: OpNe, Value: "m"}, "key != ?", []any{"m"}},
		{"cmp eq is still a set predicate", Cmp{Op: OpEq, Value: "m"}, "key = ?", []any{"m"}},
		{"prefix", Prefix("user:"), `key LIKE ? ESCAPE '\'`, []any{"user:%"}},
		{"prefix escapes metacharacters", Prefix("100%_\\"), `key LIKE ? ESCAPE '\'`, []any{`100\%\_\\%`}},
		{
			"and",
			And{Cmp{Op: OpGe, Value: "a"}, Cmp{Op: OpLt, Value: "c"}},
			"(key >= ?) AND (key < ?)",
			[]any{"a", "c"},
		},
		{"empty and matches all", And{}, "1 = 1", nil},
		{
			"or",
			Or{Key("a"), Prefix("b")},
			`(key = ?) OR (key LIKE ? ESCAPE '\')`,
			[]any{"a", "b%"},
		},
		{"empty or matches none", Or{}, "1 = 0", nil},
		{"not", Not{Expr: In{"a", "b"}}, "NOT (key IN (?, ?))", []any{"a", "b"}},
		{
			"nested",
			And{Not{Expr: Key("x")}, Or{Cmp{Op: OpLe, Value: "q"}, In{"z"}}},
			"(NOT (key = ?)) AND ((key <= ?) OR (key IN (?)))",
			[]any{"x", "q", "z"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, params, single, err := compileExpr(tc.expr)
			require.NoError(t, err)
			assert.False(t, single, "predicates are never single-key")
			assert.Equal(t, tc.wantSQL, where)
			assert.Equal(t, tc.wantParams, params)
		})
	}
}

func TestCompileExpr_NestedKeyLosesSingleFlag(t *testing.T) {
	_, _, single, err := compileExpr(And{Key("a")})
	require.NoError(t, err)
	assert.False(t, single)
}

func TestCompileExpr_Errors(t *testing.T) {
	_, _, _, err := compileExpr(nil)
	assert.Error(t, err)

	_, _, _, err = compileExpr(Cmp{Op: Op("LIKE"), Value: "x"})
	assert.Error(t, err)

	_, _, _, err = compileExpr(And{Key("a"), nil})
	assert.Error(t, err)

	_, _, _, err = compileExpr(Not{})
	assert.Error(t, err)
}
