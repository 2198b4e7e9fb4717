package dialect

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/complexir/internal/compiler"
	"github.com/roach88/complexir/internal/ir"
)

//go:embed complex.cue
var builtinSource string

// BuiltinSource returns the CUE definitions of the builtin dialects.
func BuiltinSource() string {
	return builtinSource
}

// Registry maps op kinds to compiled schemas. A Registry is read-only after
// construction and may be shared across goroutines.
type Registry struct {
	byKind  map[ir.OpKind]*Schema
	byName  map[string]*Schema
	schemas []*Schema
}

// NewRegistry compiles every op of the given dialects. Each kind may be
// defined at most once.
func NewRegistry(specs ...*ir.DialectSpec) (*Registry, error) {
	r := &Registry{
		byKind: make(map[ir.OpKind]*Schema),
		byName: make(map[string]*Schema),
	}
	for _, spec := range specs {
		for _, opSpec := range spec.Ops {
			s, err := NewSchema(opSpec)
			if err != nil {
				return nil, err
			}
			if _, dup := r.byKind[s.kind]; dup {
				return nil, fmt.Errorf("op %q defined twice", opSpec.Name)
			}
			r.byKind[s.kind] = s
			r.byName[s.Name] = s
			r.schemas = append(r.schemas, s)
		}
	}
	sort.Slice(r.schemas, func(i, j int) bool {
		return r.schemas[i].Name < r.schemas[j].Name
	})
	return r, nil
}

// Lookup returns the schema for kind.
func (r *Registry) Lookup(kind ir.OpKind) (*Schema, bool) {
	s, ok := r.byKind[kind]
	return s, ok
}

// LookupName returns the schema for a qualified op name.
func (r *Registry) LookupName(name string) (*Schema, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Schemas returns all schemas sorted by name.
func (r *Registry) Schemas() []*Schema {
	return r.schemas
}

// CompileSource compiles CUE dialect definitions into a registry.
// Compile errors are returned as *compiler.CompileError; schema rule
// violations are reported together as a *DefinitionError.
func CompileSource(filename, src string) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", filename, err)
	}
	return CompileValue(v)
}

// CompileValue compiles an already built CUE value holding a top-level
// "dialect" field.
func CompileValue(v cue.Value) (*Registry, error) {
	specs, err := compiler.CompileDialects(v)
	if err != nil {
		return nil, err
	}
	var errs []compiler.ValidationError
	for _, spec := range specs {
		errs = append(errs, compiler.Validate(spec)...)
	}
	if len(errs) > 0 {
		return nil, &DefinitionError{Errors: errs}
	}
	return NewRegistry(specs...)
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the registry of the embedded complex and arith dialects.
// It is built on first use and shared thereafter. The embedded definitions
// are part of the program, so failing to compile them panics.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r, err := CompileSource("complex.cue", builtinSource)
		if err != nil {
			panic(fmt.Sprintf("dialect: builtin definitions: %v", err))
		}
		builtin = r
	})
	return builtin
}
