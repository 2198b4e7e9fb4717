package fold

import (
	"fmt"
	"log/slog"

	"github.com/roach88/complexir/internal/ir"
)

// Rewrite records one applied fold.
type Rewrite struct {
	Seq         int       // 0-based order of application
	Op          ir.OpKind // kind of the folded op
	Name        string    // result name of the folded op
	Rule        string
	Replacement *ir.Value // value in the output module that replaces Name
}

// String renders the rewrite as "%1 -> %a (re-of-create)".
func (r Rewrite) String() string {
	return fmt.Sprintf("%%%s -> %s (%s)", r.Name, r.Replacement.Ref(), r.Rule)
}

// Module folds every op of m in order and returns a new module together
// with the rewrites applied. m is not modified.
//
// Uses of a folded result are redirected to its replacement. A constant
// replacement is materialized as a constant op that keeps the folded
// result's name, so printed output stays readable. Ops whose results
// become unused are kept. Because ops are visited in definition order and
// constants are materialized before their users are visited, one pass
// reaches a fixed point: folding the output again applies no rewrites.
func Module(m *ir.Module) (*ir.Module, []Rewrite, error) {
	b := ir.NewBuilder()
	remap := make(map[*ir.Value]*ir.Value, len(m.External))

	for _, v := range m.External {
		nv, err := b.External(v.Name, v.Type)
		if err != nil {
			return nil, nil, err
		}
		remap[v] = nv
	}

	var rewrites []Rewrite
	for i, op := range m.Ops {
		operands := make([]*ir.Value, len(op.Operands))
		for j, v := range op.Operands {
			nv, ok := remap[v]
			if !ok {
				return nil, nil, fmt.Errorf("op #%d: operand %s is not defined before use", i, v.Ref())
			}
			operands[j] = nv
		}

		// Fold sees the op with operands rewired to the output module so
		// that constants materialized earlier in this pass are visible.
		probe := &ir.Operation{Kind: op.Kind, Operands: operands, Results: op.Results, Attr: op.Attr}
		res, folded := Fold(probe)

		var replacement *ir.Value
		switch {
		case folded && res.Value != nil:
			replacement = res.Value
		case folded && res.Attr != nil:
			r := op.Result()
			kind := ir.OpRealConstant
			if _, isComplex := r.Type.(ir.ComplexType); isComplex {
				kind = ir.OpConstant
			}
			c, err := b.Append(kind, nil, []ir.Type{r.Type}, res.Attr, r.Name)
			if err != nil {
				return nil, nil, fmt.Errorf("op #%d: %w", i, err)
			}
			replacement = c.Result()
		default:
			names := make([]string, len(op.Results))
			types := make([]ir.Type, len(op.Results))
			for j, r := range op.Results {
				names[j], types[j] = r.Name, r.Type
			}
			nop, err := b.Append(op.Kind, operands, types, op.Attr, names...)
			if err != nil {
				return nil, nil, fmt.Errorf("op #%d: %w", i, err)
			}
			for j, r := range op.Results {
				remap[r] = nop.Results[j]
			}
			continue
		}

		r := op.Result()
		remap[r] = replacement
		rw := Rewrite{
			Seq:         len(rewrites),
			Op:          op.Kind,
			Name:        r.Name,
			Rule:        res.Rule,
			Replacement: replacement,
		}
		rewrites = append(rewrites, rw)
		slog.Debug("folded op",
			"op", op.Kind.String(),
			"result", r.Ref(),
			"rule", rw.Rule,
			"replacement", replacement.Ref())
	}

	return b.Module(), rewrites, nil
}
