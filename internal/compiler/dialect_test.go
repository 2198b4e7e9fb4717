package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/complexir/internal/ir"
)

func compile(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("test.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompileDialectBasic(t *testing.T) {
	v := compile(t, `
		dialect: complex: op: add: {
			summary: "complex addition"
			operands: [
				{name: "lhs", constraint: "Complex<AnyFloat>"},
				{name: "rhs", constraint: "Complex<AnyFloat>"},
			]
			results: [{name: "result", constraint: "Complex<AnyFloat>"}]
			traits: [
				"Pure",
				{name: "AllTypesMatch", slots: ["lhs", "rhs"]},
			]
			format: "$lhs ` + "`,`" + ` $rhs attr-dict ` + "`:`" + ` type($result)"
			fold: true
		}
	`)

	spec, err := CompileDialect(v.LookupPath(cue.ParsePath("dialect.complex")))
	require.NoError(t, err)

	assert.Equal(t, "complex", spec.Name)
	require.Len(t, spec.Ops, 1)
	op := spec.Ops[0]
	assert.Equal(t, "complex.add", op.Name)
	assert.Equal(t, "complex addition", op.Summary)
	assert.Equal(t, []ir.SlotSpec{
		{Name: "lhs", Constraint: "Complex<AnyFloat>"},
		{Name: "rhs", Constraint: "Complex<AnyFloat>"},
	}, op.Operands)
	assert.Equal(t, []ir.SlotSpec{{Name: "result", Constraint: "Complex<AnyFloat>"}}, op.Results)
	assert.Empty(t, op.Attributes)
	assert.Equal(t, []ir.TraitSpec{
		{Name: "Pure"},
		{Name: "AllTypesMatch", Slots: []string{"lhs", "rhs"}},
	}, op.Traits)
	assert.Equal(t, "$lhs `,` $rhs attr-dict `:` type($result)", op.Format)
	assert.True(t, op.HasFolder)
}

func TestCompileDialectTypesMatchWith(t *testing.T) {
	v := compile(t, `
		dialect: complex: op: re: {
			operands: [{name: "complex", constraint: "Complex<AnyFloat>"}]
			results: [{name: "real", constraint: "AnyFloat"}]
			traits: [{
				name: "TypesMatchWith"
				from: "complex"
				to: "real"
				transform: "element"
				summary: "element type matches"
			}]
			format: "$complex attr-dict ` + "`:`" + ` type($complex)"
		}
	`)

	spec, err := CompileDialect(v.LookupPath(cue.ParsePath("dialect.complex")))
	require.NoError(t, err)
	require.Len(t, spec.Ops, 1)
	assert.Equal(t, []ir.TraitSpec{{
		Name:      "TypesMatchWith",
		From:      "complex",
		To:        "real",
		Transform: "element",
		Summary:   "element type matches",
	}}, spec.Ops[0].Traits)
	assert.False(t, spec.Ops[0].HasFolder)
}

func TestCompileDialects(t *testing.T) {
	v := compile(t, `
		dialect: {
			complex: op: neg: {
				operands: [{name: "complex", constraint: "Complex<AnyFloat>"}]
				results: [{name: "result", constraint: "Complex<AnyFloat>"}]
				format: "$complex attr-dict ` + "`:`" + ` type($complex)"
			}
			arith: op: constant: {
				attributes: [{name: "value", constraint: "FloatAttr"}]
				results: [{name: "result", constraint: "AnyFloat"}]
				format: "$value attr-dict ` + "`:`" + ` type($result)"
			}
		}
	`)

	specs, err := CompileDialects(v)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "complex", specs[0].Name)
	assert.Equal(t, "complex.neg", specs[0].Ops[0].Name)
	assert.Equal(t, "arith", specs[1].Name)
	assert.Equal(t, "arith.constant", specs[1].Ops[0].Name)
}

func TestCompileDialectErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "no dialect",
			src:   `other: 1`,
			field: "dialect",
		},
		{
			name:  "no ops",
			src:   `dialect: complex: summary: "empty"`,
			field: "op",
		},
		{
			name: "no results",
			src: `dialect: complex: op: neg: {
				operands: [{name: "complex", constraint: "Complex<AnyFloat>"}]
				format: "$complex"
			}`,
			field: "op.complex.neg.results",
		},
		{
			name: "no format",
			src: `dialect: complex: op: neg: {
				results: [{name: "result", constraint: "Complex<AnyFloat>"}]
			}`,
			field: "op.complex.neg.format",
		},
		{
			name: "slot without constraint",
			src: `dialect: complex: op: neg: {
				results: [{name: "result"}]
				format: "attr-dict"
			}`,
			field: "results.constraint",
		},
		{
			name: "trait without name",
			src: `dialect: complex: op: neg: {
				results: [{name: "result", constraint: "Complex<AnyFloat>"}]
				traits: [{slots: ["result"]}]
				format: "attr-dict"
			}`,
			field: "traits.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileDialects(compile(t, tt.src))
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	v := compile(t, `dialect: complex: op: neg: {
	results: [{name: "result", constraint: "Complex<AnyFloat>"}]
}`)

	_, err := CompileDialects(v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.True(t, ce.Pos.IsValid())
	assert.Equal(t, "test.cue", ce.Pos.Filename())
	assert.Contains(t, err.Error(), "test.cue:")
	assert.Contains(t, err.Error(), "assembly format is required")

	plain := &CompileError{Field: "op", Message: "at least one op is required"}
	assert.Equal(t, "op: at least one op is required", plain.Error())
}

func TestCompileDialectBadFieldType(t *testing.T) {
	v := compile(t, `dialect: complex: op: neg: {
		results: [{name: "result", constraint: "Complex<AnyFloat>"}]
		format: 42
	}`)

	_, err := CompileDialects(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "string")
}
