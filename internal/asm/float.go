package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/complexir/internal/ir"
)

// elemWidth returns the float width used to print constants of type t:
// the element width for complex types, the type's own width for floats.
func elemWidth(t ir.Type) int {
	if e, ok := ir.ElementType(t); ok {
		t = e
	}
	if f, ok := t.(ir.FloatType); ok {
		return f.Width
	}
	return 64
}

// formatFloat prints the shortest decimal that parses back to the same
// value at the given width. Non-finite values print as their IEEE-754 bit
// pattern, 8 hex digits for f32 and 16 otherwise.
func formatFloat(f float64, width int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if width == 32 {
			return fmt.Sprintf("0x%08X", math.Float32bits(float32(f)))
		}
		return ir.FloatBits(f)
	}
	bitSize := 64
	if width == 32 {
		bitSize = 32
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// parseFloat is the inverse of formatFloat.
func parseFloat(text string, width int) (float64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		if width == 32 {
			bits, err := strconv.ParseUint(text[2:], 16, 32)
			if err != nil {
				return 0, err
			}
			return float64(math.Float32frombits(uint32(bits))), nil
		}
		bits, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	}
	bitSize := 64
	if width == 32 {
		bitSize = 32
	}
	return strconv.ParseFloat(text, bitSize)
}
