package usecase

import (
	"testing"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanonicalizer() *Canonicalizer {
	return NewCanonicalizer(DefaultPolicy(), logger.NewLoggerWithConfig("error", "text"))
}

func TestCanonicalize_AliasResolvesWhenCanonicalAbsent(t *testing.T) {
	c := newTestCanonicalizer()

	canonical, warnings, err := c.Canonicalize(map[string]interface{}{
		"upcCode":          "012345678905",
		"crossLinkIdA":     1,
		"crossLinkIdB":     2,
		"salesDescription": "from the legacy field",
	})
	require.NoError(t, err)
	assert.False(t, warnings.HasWarnings())
	assert.Equal(t, "from the legacy field", canonical.GetString(AttrDescription))
}

func TestCanonicalize_CanonicalNameWinsOverAlias(t *testing.T) {
	c := newTestCanonicalizer()

	canonical, _, err := c.Canonicalize(map[string]interface{}{
		"upcCode":          "012345678905",
		"crossLinkIdA":     1,
		"crossLinkIdB":     2,
		"description":      "canonical",
		"salesDescription": "alias",
	})
	require.NoError(t, err)
	assert.Equal(t, "canonical", canonical.GetString(AttrDescription))
}

func TestCanonicalize_EmptyStringIsAbsent(t *testing.T) {
	c := newTestCanonicalizer()

	canonical, _, err := c.Canonicalize(map[string]interface{}{
		"upcCode":      "012345678905",
		"crossLinkIdA": 1,
		"crossLinkIdB": 2,
		"description":  "",
	})
	require.NoError(t, err)
	assert.False(t, canonical.Has(AttrDescription))
}

func TestCanonicalize_RequiredMissingIsValidationError(t *testing.T) {
	c := newTestCanonicalizer()

	_, _, err := c.Canonicalize(map[string]interface{}{
		"upcCode":      "012345678905",
		"crossLinkIdB": 2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "crossLinkIdA")
}

func TestCanonicalize_RequiredNonPositiveRejected(t *testing.T) {
	c := newTestCanonicalizer()

	for _, bad := range []interface{}{0, -5, "0"} {
		_, _, err := c.Canonicalize(map[string]interface{}{
			"upcCode":      "012345678905",
			"crossLinkIdA": bad,
			"crossLinkIdB": 2,
		})
		require.Error(t, err, "value %v must be rejected", bad)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestCanonicalize_RequiredUnparsableRejected(t *testing.T) {
	c := newTestCanonicalizer()

	_, _, err := c.Canonicalize(map[string]interface{}{
		"upcCode":      "012345678905",
		"crossLinkIdA": "not-a-number",
		"crossLinkIdB": 2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "crossLinkIdA")
}

func TestCanonicalize_OptionalUnparsableBecomesWarning(t *testing.T) {
	c := newTestCanonicalizer()

	canonical, warnings, err := c.Canonicalize(map[string]interface{}{
		"upcCode":      "012345678905",
		"crossLinkIdA": 1,
		"crossLinkIdB": 2,
		"listPrice":    "free",
	})
	require.NoError(t, err)
	require.True(t, warnings.HasWarnings())
	assert.Equal(t, AttrListPrice, warnings.Items[0].Attribute)
	assert.False(t, canonical.Has(AttrListPrice))
}

func TestCanonicalize_MaxLenEnforced(t *testing.T) {
	c := newTestCanonicalizer()

	_, _, err := c.Canonicalize(map[string]interface{}{
		"upcCode":      "012345678905678901234",
		"crossLinkIdA": 1,
		"crossLinkIdB": 2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "upcCode")
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		in      interface{}
		want    int64
		wantErr bool
	}{
		{42, 42, false},
		{int64(42), 42, false},
		{42.0, 42, false},
		{" 42 ", 42, false},
		{42.5, 0, true},
		{"forty-two", 0, true},
		{true, 0, true},
	}
	for _, tc := range cases {
		got, err := coerceInt(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %v", tc.in)
			continue
		}
		require.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestCoerceBool(t *testing.T) {
	truthy := []interface{}{true, "true", "TRUE", "1", "y", "Yes", "t", 1.0}
	for _, in := range truthy {
		got, err := coerceBool(in)
		require.NoError(t, err, "input %v", in)
		assert.True(t, got, "input %v", in)
	}

	falsy := []interface{}{false, "false", "0", "N", "no", "f", 0.0}
	for _, in := range falsy {
		got, err := coerceBool(in)
		require.NoError(t, err, "input %v", in)
		assert.False(t, got, "input %v", in)
	}

	for _, in := range []interface{}{"maybe", 2.0, []string{}} {
		_, err := coerceBool(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestCoerceDecimal(t *testing.T) {
	got, err := coerceDecimal("12.50")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	got, err = coerceDecimal(7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	_, err = coerceDecimal("costly")
	assert.Error(t, err)
}
