package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModule  = "complexir/module/v1"
	DomainRewrite = "complexir/rewrite/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModuleID computes the content-addressed ID of a module.
// Structurally equal modules (see EqualModules) have equal IDs.
func ModuleID(m *Module) (string, error) {
	canonical, err := MarshalCanonical(CanonicalModule(m))
	if err != nil {
		return "", fmt.Errorf("ModuleID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}

// RewriteID computes the ID of one fold rewrite within a module.
func RewriteID(moduleID, value, rule string, seq int64) (string, error) {
	obj := map[string]any{
		"module_id": moduleID,
		"value":     value,
		"rule":      rule,
		"seq":       seq,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RewriteID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRewrite, canonical), nil
}

// MustModuleID is like ModuleID but panics on error.
// Use only in tests or when the module is known to be well formed.
func MustModuleID(m *Module) string {
	id, err := ModuleID(m)
	if err != nil {
		panic(err)
	}
	return id
}

// CanonicalModule converts a module to the map form accepted by MarshalCanonical.
// The IR version is part of the form, so a schema change changes every ID.
func CanonicalModule(m *Module) map[string]any {
	externals := make([]any, len(m.External))
	for i, v := range m.External {
		externals[i] = canonicalValue(v)
	}
	ops := make([]any, len(m.Ops))
	for i, op := range m.Ops {
		operands := make([]any, len(op.Operands))
		for j, v := range op.Operands {
			operands[j] = v.Name
		}
		results := make([]any, len(op.Results))
		for j, v := range op.Results {
			results[j] = canonicalValue(v)
		}
		entry := map[string]any{
			"kind":     op.Kind.String(),
			"operands": operands,
			"results":  results,
		}
		if op.Attr != nil {
			entry["attr"] = canonicalAttr(op.Attr)
		}
		ops[i] = entry
	}
	return map[string]any{
		"ir_version": IRVersion,
		"externals":  externals,
		"ops":        ops,
	}
}

func canonicalValue(v *Value) map[string]any {
	return map[string]any{"name": v.Name, "type": v.Type.String()}
}

func canonicalAttr(a Attribute) any {
	switch x := a.(type) {
	case FloatAttr:
		return FloatBits(x.Value)
	case ComplexAttr:
		return []any{FloatBits(x.Re), FloatBits(x.Im)}
	case BoolAttr:
		return x.Value
	default:
		return fmt.Sprintf("%T", a)
	}
}
