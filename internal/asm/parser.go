package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/ir"
)

// ParseModule parses a module with the builtin syntax.
func ParseModule(src string) (*ir.Module, error) {
	return Default().ParseModule(src)
}

// ParseOp parses a single op with the builtin syntax. Operands are created
// as external values.
func ParseOp(src string) (*ir.Operation, error) {
	return Default().ParseOp(src)
}

// ParseModule parses one op per line into a new module.
func (s *Syntax) ParseModule(src string) (*ir.Module, error) {
	p := s.NewParser()
	if err := p.Parse(src); err != nil {
		return nil, err
	}
	return p.Module(), nil
}

// ParseOp parses src, which must hold exactly one op.
func (s *Syntax) ParseOp(src string) (*ir.Operation, error) {
	p := s.NewParser()
	if err := p.Parse(src); err != nil {
		return nil, err
	}
	ops := p.Module().Ops
	if len(ops) != 1 {
		return nil, &ParseError{Expected: "exactly one operation", Found: fmt.Sprintf("%d", len(ops)), Line: 1, Column: 1}
	}
	return ops[0], nil
}

// Parser builds a module incrementally. Values defined by earlier calls to
// Parse stay in scope for later ones. A Parser is not safe for concurrent
// use.
type Parser struct {
	syn *Syntax
	b   *ir.Builder

	lex *lexer
	tok token
}

// NewParser returns a parser that appends to an empty module.
func (s *Syntax) NewParser() *Parser {
	return &Parser{syn: s, b: ir.NewBuilder()}
}

// Module returns the module parsed so far.
func (p *Parser) Module() *ir.Module {
	return p.b.Module()
}

// Parse appends every op in src to the module. It stops at the first
// error; ops parsed before the failing line are kept. Each op is verified
// before it is appended, so verification errors surface here too.
func (p *Parser) Parse(src string) error {
	p.lex = newLexer(src)
	p.scan()
	for {
		for p.tok.kind == tokNewline {
			p.scan()
		}
		if p.tok.kind == tokEOF {
			return nil
		}
		if err := p.parseOp(); err != nil {
			return err
		}
	}
}

func (p *Parser) scan() {
	p.tok = p.lex.next()
}

func (p *Parser) expectPunct(text string) error {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return expected(fmt.Sprintf("'%s'", text), p.tok)
	}
	p.scan()
	return nil
}

// pending is an op under construction: slot values and types gathered
// from the text before inference fills in the rest.
type pending struct {
	schema   *dialect.Schema
	names    []string
	operands []string
	opToks   []token
	types    map[string]ir.Type
	attr     []token
	start    token
}

func (p *Parser) parseOp() error {
	op := pending{start: p.tok, types: make(map[string]ir.Type)}

	// Optional result bindings: %a, %b =
	if p.tok.kind == tokValue {
		for {
			if p.tok.kind != tokValue {
				return expected("result name", p.tok)
			}
			op.names = append(op.names, p.tok.text[1:])
			p.scan()
			if p.tok.kind == tokPunct && p.tok.text == "," {
				p.scan()
				continue
			}
			break
		}
		if err := p.expectPunct("="); err != nil {
			return err
		}
	}

	if p.tok.kind != tokIdent {
		return expected("operation name", p.tok)
	}
	schema, ok := p.syn.reg.LookupName(p.tok.text)
	if !ok {
		return expected("registered operation name", p.tok)
	}
	op.schema = schema
	op.operands = make([]string, len(schema.Operands))
	op.opToks = make([]token, len(schema.Operands))
	p.scan()

	for _, d := range p.syn.templates[schema.OpKind()] {
		if err := p.parseDirective(&op, d); err != nil {
			return err
		}
	}

	if p.tok.kind != tokNewline && p.tok.kind != tokEOF {
		return expected("end of line", p.tok)
	}
	if op.names != nil && len(op.names) != len(schema.Results) {
		return &ParseError{
			Expected: fmt.Sprintf("%d result name(s)", len(schema.Results)),
			Found:    strconv.Itoa(len(op.names)),
			Offset:   op.start.offset,
			Line:     op.start.line,
			Column:   op.start.column,
		}
	}
	return p.finish(&op)
}

func (p *Parser) parseDirective(op *pending, d directive) error {
	switch d.kind {
	case dirLiteral:
		return p.expectPunct(d.text)

	case dirSlot:
		if d.slot.Class == ir.SlotAttribute {
			return p.parseAttr(op)
		}
		if p.tok.kind != tokValue {
			return expected("'%"+d.slot.Spec.Name+"'", p.tok)
		}
		op.operands[d.slot.Index] = p.tok.text[1:]
		op.opToks[d.slot.Index] = p.tok
		p.scan()
		return nil

	case dirAttrDict:
		// Only the empty dictionary is accepted.
		if p.tok.kind == tokPunct && p.tok.text == "{" {
			p.scan()
			return p.expectPunct("}")
		}
		return nil

	case dirType:
		t, err := p.parseType()
		if err != nil {
			return err
		}
		op.types[d.slot.Spec.Name] = t
		return nil
	}
	return nil
}

// parseAttr records the raw tokens of a constant. They are converted once
// the result type, and with it the float width, is known.
func (p *Parser) parseAttr(op *pending) error {
	switch {
	case p.tok.kind == tokPunct && p.tok.text == "[":
		p.scan()
		re := p.tok
		if re.kind != tokNumber {
			return expected("float literal", re)
		}
		p.scan()
		if err := p.expectPunct(","); err != nil {
			return err
		}
		im := p.tok
		if im.kind != tokNumber {
			return expected("float literal", im)
		}
		p.scan()
		if err := p.expectPunct("]"); err != nil {
			return err
		}
		op.attr = []token{re, im}
	case p.tok.kind == tokNumber:
		op.attr = []token{p.tok}
		p.scan()
	case p.tok.kind == tokIdent && (p.tok.text == "true" || p.tok.text == "false"):
		op.attr = []token{p.tok}
		p.scan()
	default:
		return expected("constant value", p.tok)
	}
	return nil
}

// parseType parses f16, f32, f64, iN or complex<T>.
func (p *Parser) parseType() (ir.Type, error) {
	if p.tok.kind != tokIdent {
		return nil, expected("type", p.tok)
	}
	text := p.tok.text
	at := p.tok

	if text == "complex" {
		p.scan()
		if err := p.expectPunct("<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(">"); err != nil {
			return nil, err
		}
		return ir.Complex(elem), nil
	}

	if len(text) > 1 && (text[0] == 'f' || text[0] == 'i') {
		if w, err := strconv.Atoi(text[1:]); err == nil && w > 0 && !strings.HasPrefix(text[1:], "0") {
			p.scan()
			if text[0] == 'f' {
				return ir.FloatType{Width: w}, nil
			}
			return ir.IntegerType{Width: w}, nil
		}
	}
	return nil, expected("type", at)
}

// finish infers missing types, builds the candidate op, verifies it and
// only then commits externals and the op to the module.
func (p *Parser) finish(op *pending) error {
	s := op.schema

	// Operand types come from earlier definitions unless the text spelled
	// them; a disagreement is left for the verifier to report.
	for i, name := range op.operands {
		slot := s.Operands[i].Name
		if v, ok := p.b.Lookup(name); ok && op.types[slot] == nil {
			op.types[slot] = v.Type
		}
	}

	attr, err := p.buildAttr(op)
	if err != nil {
		return err
	}
	s.InferTypes(op.types, attr)

	candidate := &ir.Operation{Kind: s.OpKind(), Attr: attr}
	var externals []*ir.Value
	for i, name := range op.operands {
		if v, ok := p.b.Lookup(name); ok {
			candidate.Operands = append(candidate.Operands, v)
			continue
		}
		if v := findValue(externals, name); v != nil {
			candidate.Operands = append(candidate.Operands, v)
			continue
		}
		t := op.types[s.Operands[i].Name]
		if t == nil {
			return &ParseError{
				Expected: "operand with inferable type",
				Found:    op.opToks[i].describe(),
				Offset:   op.opToks[i].offset,
				Line:     op.opToks[i].line,
				Column:   op.opToks[i].column,
			}
		}
		v := &ir.Value{Name: name, Type: t}
		externals = append(externals, v)
		candidate.Operands = append(candidate.Operands, v)
	}

	resultTypes := make([]ir.Type, len(s.Results))
	for i, sl := range s.Results {
		t := op.types[sl.Name]
		if t == nil {
			return &ParseError{
				Expected: fmt.Sprintf("type for result %s", sl.Name),
				Found:    "none",
				Offset:   op.start.offset,
				Line:     op.start.line,
				Column:   op.start.column,
			}
		}
		resultTypes[i] = t
		candidate.Results = append(candidate.Results, &ir.Value{Type: t, Def: candidate, Index: i})
	}

	if err := p.syn.reg.Verify(candidate); err != nil {
		return positioned(op.start, err)
	}

	operands := candidate.Operands
	for i, v := range operands {
		if !v.IsExternal() || findValue(externals, v.Name) != v {
			continue
		}
		if existing, ok := p.b.Lookup(v.Name); ok {
			operands[i] = existing
			continue
		}
		ext, err := p.b.External(v.Name, v.Type)
		if err != nil {
			return positioned(op.start, err)
		}
		operands[i] = ext
	}

	if _, err := p.b.Append(s.OpKind(), operands, resultTypes, attr, op.names...); err != nil {
		return positioned(op.start, err)
	}
	return nil
}

func (p *Parser) buildAttr(op *pending) (ir.Attribute, error) {
	if op.attr == nil {
		return nil, nil
	}
	width := 64
	if len(op.schema.Results) > 0 {
		if t := op.types[op.schema.Results[0].Name]; t != nil {
			width = elemWidth(t)
		}
	}

	if len(op.attr) == 1 && op.attr[0].kind == tokIdent {
		return ir.BoolAttr{Value: op.attr[0].text == "true"}, nil
	}

	vals := make([]float64, len(op.attr))
	for i, tok := range op.attr {
		f, err := parseFloat(tok.text, width)
		if err != nil {
			pe := expected(fmt.Sprintf("f%d literal", width), tok)
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				pe.Expected = fmt.Sprintf("f%d literal in range", width)
			}
			return nil, pe
		}
		vals[i] = f
	}
	if len(vals) == 2 {
		return ir.ComplexAttr{Re: vals[0], Im: vals[1]}, nil
	}
	return ir.FloatAttr{Value: vals[0]}, nil
}

func findValue(vals []*ir.Value, name string) *ir.Value {
	for _, v := range vals {
		if v.Name == name {
			return v
		}
	}
	return nil
}
