package asm

import (
	"fmt"
	"strings"

	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/ir"
)

type directiveKind int

const (
	dirLiteral  directiveKind = iota // `,`
	dirSlot                          // $lhs
	dirAttrDict                      // attr-dict
	dirType                          // type($lhs)
)

type directive struct {
	kind directiveKind
	text string     // literal text for dirLiteral
	slot ir.SlotRef // referenced slot for dirSlot and dirType
}

// template is a compiled assembly format.
type template []directive

// compileFormat turns a format string such as
//
//	$lhs `,` $rhs attr-dict `:` type($result)
//
// into directives, resolving every slot name against the schema.
func compileFormat(s *dialect.Schema) (template, error) {
	var out template
	f := s.Format
	for {
		f = strings.TrimLeft(f, " \t")
		if f == "" {
			return out, nil
		}
		switch {
		case f[0] == '`':
			end := strings.IndexByte(f[1:], '`')
			if end < 0 {
				return nil, fmt.Errorf("op %s: unterminated literal in format %q", s.Name, s.Format)
			}
			lit := f[1 : end+1]
			if lit == "" || strings.ContainsAny(lit, " \t") {
				return nil, fmt.Errorf("op %s: invalid literal %q in format", s.Name, lit)
			}
			out = append(out, directive{kind: dirLiteral, text: lit})
			f = f[end+2:]

		case f[0] == '$':
			name, rest := splitName(f[1:])
			ref, err := lookupSlot(s, name)
			if err != nil {
				return nil, err
			}
			if ref.Class == ir.SlotResult {
				return nil, fmt.Errorf("op %s: result slot %s cannot be spelled in the format", s.Name, name)
			}
			out = append(out, directive{kind: dirSlot, slot: ref})
			f = rest

		case strings.HasPrefix(f, "attr-dict"):
			out = append(out, directive{kind: dirAttrDict})
			f = f[len("attr-dict"):]

		case strings.HasPrefix(f, "type($"):
			name, rest := splitName(f[len("type($"):])
			if !strings.HasPrefix(rest, ")") {
				return nil, fmt.Errorf("op %s: malformed type directive in format %q", s.Name, s.Format)
			}
			ref, err := lookupSlot(s, name)
			if err != nil {
				return nil, err
			}
			if ref.Class == ir.SlotAttribute {
				return nil, fmt.Errorf("op %s: attribute %s has no type", s.Name, name)
			}
			out = append(out, directive{kind: dirType, slot: ref})
			f = rest[1:]

		default:
			return nil, fmt.Errorf("op %s: unexpected %q in format", s.Name, f)
		}
	}
}

func splitName(s string) (string, string) {
	i := 0
	for i < len(s) && (isIdentStart(s[i]) || isDigit(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

func lookupSlot(s *dialect.Schema, name string) (ir.SlotRef, error) {
	ref, ok := s.Slot(name)
	if !ok {
		return ir.SlotRef{}, fmt.Errorf("op %s: format references unknown slot %q", s.Name, name)
	}
	return ref, nil
}
