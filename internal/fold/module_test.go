package fold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/ir"
)

func foldText(t *testing.T, src string) (string, []Rewrite, *ir.Module) {
	t.Helper()
	m, err := asm.ParseModule(src)
	require.NoError(t, err)

	out, rewrites, err := Module(m)
	require.NoError(t, err)
	require.NoError(t, dialect.VerifyModule(t.Context(), out, 0))

	text, err := asm.PrintModule(out)
	require.NoError(t, err)
	return text, rewrites, out
}

func TestModuleSampleScenario(t *testing.T) {
	text, rewrites, out := foldText(t, `
complex.create %a, %b : complex<f32>
complex.re %0 : complex<f32>
`)
	assert.Equal(t, "%0 = complex.create %a, %b : complex<f32>\n", text)

	require.Len(t, rewrites, 1)
	rw := rewrites[0]
	assert.Equal(t, ir.OpRe, rw.Op)
	assert.Equal(t, "1", rw.Name)
	assert.Equal(t, RuleReOfCreate, rw.Rule)
	a, ok := out.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, rw.Replacement)
	assert.Equal(t, "%1 -> %a (re-of-create)", rw.String())
}

const mixedModule = `// constants fold, the create/re pair cancels
%c = complex.constant [1.5, 2.0] : complex<f32>
%d = complex.constant [0.25, -4.0] : complex<f32>
%s = complex.add %c, %d : complex<f32>
%n = complex.neg %s : complex<f32>
%x = complex.create %a, %b : complex<f32>
%r = complex.re %x : complex<f32>
%m = complex.mul %n, %x : complex<f32>
%k = complex.create %r, %r : complex<f32>
%e = complex.eq %k, %k : complex<f32>
`

func TestModuleMixed(t *testing.T) {
	text, rewrites, _ := foldText(t, mixedModule)

	assert.Equal(t, `%c = complex.constant [1.5, 2.0] : complex<f32>
%d = complex.constant [0.25, -4.0] : complex<f32>
%s = complex.constant [1.75, -2.0] : complex<f32>
%n = complex.constant [-1.75, 2.0] : complex<f32>
%x = complex.create %a, %b : complex<f32>
%m = complex.mul %n, %x : complex<f32>
%k = complex.create %a, %a : complex<f32>
%e = complex.eq %k, %k : complex<f32>
`, text)

	var got []string
	for _, rw := range rewrites {
		got = append(got, rw.String())
	}
	assert.Equal(t, []string{
		"%s -> %s (constant)",
		"%n -> %n (constant)",
		"%r -> %a (re-of-create)",
	}, got)
	for i, rw := range rewrites {
		assert.Equal(t, i, rw.Seq)
	}
}

func TestModuleIsIdempotent(t *testing.T) {
	for name, src := range map[string]string{
		"mixed":   mixedModule,
		"chain":   "%c = complex.constant [1.0, 2.0] : complex<f64>\n%1 = complex.exp %c : complex<f64>\n%2 = complex.log %1 : complex<f64>\n%3 = complex.abs %2 : complex<f64>\n",
		"f16":     "%c = complex.constant [1.0, 2.0] : complex<f16>\n%1 = complex.neg %c : complex<f16>\n",
		"nothing": "%1 = complex.add %a, %b : complex<f64>\n",
	} {
		t.Run(name, func(t *testing.T) {
			once, _, out := foldText(t, src)

			again, rewrites, err := Module(out)
			require.NoError(t, err)
			assert.Empty(t, rewrites)
			assert.True(t, ir.EqualModules(out, again))

			text, err := asm.PrintModule(again)
			require.NoError(t, err)
			assert.Equal(t, once, text)
		})
	}
}

func TestModuleDoesNotModifyInput(t *testing.T) {
	m, err := asm.ParseModule(mixedModule)
	require.NoError(t, err)
	before, err := asm.PrintModule(m)
	require.NoError(t, err)

	_, _, err = Module(m)
	require.NoError(t, err)

	after, err := asm.PrintModule(m)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, m.Ops, 9)
}

func TestModuleUndefinedOperand(t *testing.T) {
	v := &ir.Value{Name: "ghost", Type: ir.Complex(ir.F32)}
	m := &ir.Module{Ops: []*ir.Operation{{
		Kind:     ir.OpNeg,
		Operands: []*ir.Value{v},
		Results:  []*ir.Value{{Name: "0", Type: ir.Complex(ir.F32)}},
	}}}
	_, _, err := Module(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%ghost")
}
