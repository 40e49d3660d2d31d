package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"
)

// Canonicalizer applies the alias table once at the boundary, turning a raw
// stringly-typed payload into a typed CanonicalAttributes value before any
// business logic runs.
type Canonicalizer struct {
	policy *ReconciliationPolicy
	log    logger.Logger
}

// NewCanonicalizer creates a canonicalizer for one policy version.
func NewCanonicalizer(policy *ReconciliationPolicy, log logger.Logger) *Canonicalizer {
	return &Canonicalizer{
		policy: policy,
		log:    log.WithComponent("canonicalizer"),
	}
}

// Canonicalize resolves aliases and coerces values. Required attributes that
// are missing or unparsable return a validation error naming the attribute;
// every other coercion failure becomes a warning and the attribute is
// dropped from the result.
func (c *Canonicalizer) Canonicalize(raw map[string]interface{}) (model.CanonicalAttributes, *apperrors.Warnings, error) {
	canonical := make(model.CanonicalAttributes, len(raw))
	warnings := apperrors.NewWarnings()

	for i := range c.policy.Attributes {
		spec := &c.policy.Attributes[i]

		value, present := c.pickValue(raw, spec)
		if !present {
			if spec.Required {
				return nil, warnings, apperrors.NewValidationError(
					fmt.Sprintf("required attribute %q is missing", spec.Name)).
					WithDetail("attribute", spec.Name)
			}
			continue
		}

		coerced, err := coerceValue(spec.Type, value)
		if err != nil {
			if spec.Required {
				return nil, warnings, apperrors.NewValidationError(
					fmt.Sprintf("required attribute %q: %v", spec.Name, err)).
					WithDetail("attribute", spec.Name).
					WithDetail("value", value)
			}
			c.log.Warnf("Skipping attribute %s: %v", spec.Name, err)
			warnings.Add(spec.Name, err.Error(), value)
			continue
		}

		if spec.Required {
			n, _ := coerced.(int64)
			if n <= 0 {
				return nil, warnings, apperrors.NewValidationError(
					fmt.Sprintf("required attribute %q must be a positive integer", spec.Name)).
					WithDetail("attribute", spec.Name).
					WithDetail("value", value)
			}
		}

		if spec.MaxLen > 0 {
			if s, ok := coerced.(string); ok && len(s) > spec.MaxLen {
				return nil, warnings, apperrors.NewValidationError(
					fmt.Sprintf("attribute %q exceeds %d characters", spec.Name, spec.MaxLen)).
					WithDetail("attribute", spec.Name)
			}
		}

		canonical[spec.Name] = coerced
	}

	return canonical, warnings, nil
}

// pickValue resolves which source field supplies one canonical attribute.
// The canonical name always wins; when both it and a legacy alias are
// present the choice is logged for auditability.
func (c *Canonicalizer) pickValue(raw map[string]interface{}, spec *AttributeSpec) (interface{}, bool) {
	primary, primaryPresent := presentValue(raw, spec.Name)

	for _, alias := range spec.Aliases {
		aliasValue, aliasPresent := presentValue(raw, alias)
		if !aliasPresent {
			continue
		}
		if primaryPresent {
			c.log.WithFields(map[string]interface{}{
				"attribute": spec.Name,
				"alias":     alias,
			}).Info("Both canonical name and legacy alias supplied; canonical name wins")
			return primary, true
		}
		return aliasValue, true
	}

	return primary, primaryPresent
}

// presentValue treats nil and empty strings as absent.
func presentValue(raw map[string]interface{}, key string) (interface{}, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// coerceValue converts a raw value to the declared attribute type.
func coerceValue(attrType model.AttributeType, value interface{}) (interface{}, error) {
	switch attrType {
	case model.AttributeTypeString, model.AttributeTypeText:
		return coerceString(value)
	case model.AttributeTypeInt:
		return coerceInt(value)
	case model.AttributeTypeBool:
		return coerceBool(value)
	case model.AttributeTypeDecimal:
		return coerceDecimal(value)
	}
	return nil, fmt.Errorf("unknown attribute type %q", attrType)
}

func coerceString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("cannot represent %T as string", value)
	}
}

func coerceInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot represent %T as integer", value)
	}
}

func coerceBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "y", "yes", "t":
			return true, nil
		case "false", "0", "n", "no", "f":
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as boolean", v)
	case float64:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
		return false, fmt.Errorf("cannot interpret %v as boolean", v)
	default:
		return false, fmt.Errorf("cannot represent %T as boolean", value)
	}
}

func coerceDecimal(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as decimal", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot represent %T as decimal", value)
	}
}
