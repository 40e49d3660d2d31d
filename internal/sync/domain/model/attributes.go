package model

// AttributeType is the declared type of a canonical attribute.
type AttributeType string

const (
	AttributeTypeString  AttributeType = "string"
	AttributeTypeInt     AttributeType = "int"
	AttributeTypeBool    AttributeType = "bool"
	AttributeTypeDecimal AttributeType = "decimal"
	// AttributeTypeText is a raw text blob; carried verbatim, never coerced.
	AttributeTypeText AttributeType = "text"
)

// CanonicalAttributes is the strongly-typed attribute set produced by the
// canonicalizer at the boundary. Keys are canonical attribute names; values
// are already coerced to the declared type. Absent keys mean "leave the
// target's current value untouched".
type CanonicalAttributes map[string]interface{}

// Has reports whether the attribute is present. Empty strings count as
// absent: an empty canonical value never overwrites a persisted one.
func (c CanonicalAttributes) Has(name string) bool {
	v, ok := c[name]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// GetString returns a string attribute, or "" when absent.
func (c CanonicalAttributes) GetString(name string) string {
	if v, ok := c[name]; ok {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return ""
}

// GetInt returns an integer attribute and whether it is present.
func (c CanonicalAttributes) GetInt(name string) (int64, bool) {
	if v, ok := c[name]; ok {
		if n, isInt := v.(int64); isInt {
			return n, true
		}
	}
	return 0, false
}

// GetBool returns a boolean attribute and whether it is present.
func (c CanonicalAttributes) GetBool(name string) (bool, bool) {
	if v, ok := c[name]; ok {
		if b, isBool := v.(bool); isBool {
			return b, true
		}
	}
	return false, false
}

// GetDecimal returns a decimal attribute and whether it is present.
func (c CanonicalAttributes) GetDecimal(name string) (float64, bool) {
	if v, ok := c[name]; ok {
		if f, isFloat := v.(float64); isFloat {
			return f, true
		}
	}
	return 0, false
}
