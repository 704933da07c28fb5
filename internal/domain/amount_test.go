package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/recipe-box/internal/domain"
)

func TestNormalizeAmount_VulgarFractions(t *testing.T) {
	assert.Equal(t, "1/2", domain.NormalizeAmount("½"))
	assert.Equal(t, "3/4", domain.NormalizeAmount("¾"))
	assert.Equal(t, "1 1/2", domain.NormalizeAmount("1½"), "digit followed by glyph is a mixed number")
	assert.Equal(t, "2 1/3", domain.NormalizeAmount("2 ⅓"))
}

func TestNormalizeAmount_IrregularSpacing(t *testing.T) {
	assert.Equal(t, "1 1/2", domain.NormalizeAmount("1 1 /2"))
	assert.Equal(t, "1 1/2", domain.NormalizeAmount("1  1 / 2"))
	assert.Equal(t, "1/2", domain.NormalizeAmount("  1 / 2  "))
}

func TestNormalizeAmount_PlainValuesUntouched(t *testing.T) {
	assert.Equal(t, "", domain.NormalizeAmount("   "))
	assert.Equal(t, "2.5", domain.NormalizeAmount("2.5"))
	assert.Equal(t, "3/4", domain.NormalizeAmount("3/4"))
	assert.Equal(t, "1 1/2", domain.NormalizeAmount("1 1/2"))
}

func TestValidateAmount_Accepts(t *testing.T) {
	for _, s := range []string{"", "1", "42", "2.5", "0", "1000", "1/2", "3/4", "1 1/2", "999 1/2"} {
		assert.True(t, domain.ValidateAmount(s), "amount %q should validate", s)
	}
}

func TestValidateAmount_Rejects(t *testing.T) {
	for _, s := range []string{"abc", "-1", "1001", "1/0", "1 1/0", "1/2/3", "1.2.3", "one"} {
		assert.False(t, domain.ValidateAmount(s), "amount %q should fail", s)
	}
}

func TestValidateAmount_NormalizedGlyphsRoundTrip(t *testing.T) {
	for _, s := range []string{"½", "1½", "1 1 /2"} {
		assert.True(t, domain.ValidateAmount(domain.NormalizeAmount(s)), "input %q", s)
	}
	assert.False(t, domain.ValidateAmount(domain.NormalizeAmount("abc")))
}
