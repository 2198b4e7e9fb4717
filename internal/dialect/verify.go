package dialect

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/complexir/internal/ir"
)

// Verify checks op against its schema in the builtin registry.
func Verify(op *ir.Operation) error {
	return Builtin().Verify(op)
}

// Verify checks op against its schema. Checks run in a fixed order and the
// first failure is returned:
//
//  1. operand, result and attribute arity
//  2. operand slot constraints, then result, then attribute
//  3. traits in declaration order
//
// The returned error is nil or a *VerifyError.
func (r *Registry) Verify(op *ir.Operation) error {
	s, ok := r.Lookup(op.Kind)
	if !ok {
		return violation(op.Kind.String(), "registered", "op kind is not registered in the dialect")
	}
	if err := s.verify(op); err != nil {
		return err
	}
	return nil
}

func (s *Schema) verify(op *ir.Operation) *VerifyError {
	if err := s.verifyArity(op); err != nil {
		return err
	}

	for i, c := range s.operands {
		if t := op.Operands[i].Type; !c.MatchType(t) {
			return violation(s.Name, c.Name,
				fmt.Sprintf("operand %s has type %s", s.Operands[i].Name, t),
				s.Operands[i].Name)
		}
	}
	for i, c := range s.results {
		if t := op.Results[i].Type; !c.MatchType(t) {
			return violation(s.Name, c.Name,
				fmt.Sprintf("result %s has type %s", s.Results[i].Name, t),
				s.Results[i].Name)
		}
	}
	if len(s.attributes) > 0 {
		if c := s.attributes[0]; !c.MatchAttr(op.Attr) {
			return violation(s.Name, c.Name,
				fmt.Sprintf("attribute %s has the wrong kind", s.Attributes[0].Name),
				s.Attributes[0].Name)
		}
	}

	b := s.bind(op)
	for _, t := range s.traits {
		if t.verify == nil {
			continue
		}
		if err := t.verify(s.Name, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) verifyArity(op *ir.Operation) *VerifyError {
	if len(op.Operands) != len(s.Operands) {
		return violation(s.Name, "arity",
			fmt.Sprintf("expected %d operand(s), got %d", len(s.Operands), len(op.Operands)))
	}
	for i, v := range op.Operands {
		if v == nil || v.Type == nil {
			return violation(s.Name, "arity",
				fmt.Sprintf("operand %s is undefined", s.Operands[i].Name),
				s.Operands[i].Name)
		}
	}
	if len(op.Results) != len(s.Results) {
		return violation(s.Name, "arity",
			fmt.Sprintf("expected %d result(s), got %d", len(s.Results), len(op.Results)))
	}
	for i, v := range op.Results {
		if v == nil || v.Type == nil {
			return violation(s.Name, "arity",
				fmt.Sprintf("result %s is untyped", s.Results[i].Name),
				s.Results[i].Name)
		}
	}
	switch {
	case len(s.Attributes) > 0 && op.Attr == nil:
		return violation(s.Name, "arity",
			fmt.Sprintf("missing attribute %s", s.Attributes[0].Name),
			s.Attributes[0].Name)
	case len(s.Attributes) == 0 && op.Attr != nil:
		return violation(s.Name, "arity", "op takes no attribute")
	}
	return nil
}

// VerifyModule verifies every op of m with the builtin registry.
func VerifyModule(ctx context.Context, m *ir.Module, parallelism int) error {
	return Builtin().VerifyModule(ctx, m, parallelism)
}

// VerifyModule verifies the ops of m concurrently, with at most parallelism
// checks in flight (unbounded when parallelism <= 0). Ops are independent
// so order does not affect the outcome; when several ops fail, the error of
// the lowest-index op is returned with its Index set.
func (r *Registry) VerifyModule(ctx context.Context, m *ir.Module, parallelism int) error {
	errs := make([]*VerifyError, len(m.Ops))

	g, gCtx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, op := range m.Ops {
		// Ops before i have all been scheduled, so stopping here cannot
		// skip a lower-index failure.
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			s, ok := r.Lookup(op.Kind)
			if !ok {
				errs[i] = violation(op.Kind.String(), "registered", "op kind is not registered in the dialect")
				return errs[i]
			}
			if err := s.verify(op); err != nil {
				errs[i] = err
				return err
			}
			return nil
		})
	}

	waitErr := g.Wait()
	for i, err := range errs {
		if err != nil {
			e := *err
			e.Index = i
			slog.Debug("module verification failed",
				"op_index", i,
				"op", e.Op,
				"kind", e.Kind,
				"constraint", e.Constraint)
			return &e
		}
	}
	if waitErr != nil {
		return waitErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Debug("module verified", "ops", len(m.Ops))
	return nil
}
