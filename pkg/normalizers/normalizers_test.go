package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "acme corp", Normalize("  Acme   Corp  "))
	assert.Equal(t, "cafe lumiere", Normalize("Café Lumière"))
	assert.Equal(t, "acme corp", Normalize("ACME\tCORP"))
	assert.Equal(t, "", Normalize("   "))

	// Re-running on already-normalized input is stable
	assert.Equal(t, Normalize("acme corp"), Normalize(Normalize("  Acme   Corp  ")))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "acmecorp", Compact("Acme Corp."))
	assert.Equal(t, "acmecorp", Compact("A.C.M.E-Corp"))
	assert.Equal(t, "cafelumiere", Compact("Café Lumière!"))
	assert.Equal(t, "", Compact("---"))
}

func TestCanonicalCompact(t *testing.T) {
	assert.Equal(t, "acme", CanonicalCompact("Acme Inc."))
	assert.Equal(t, "acme", CanonicalCompact("The Acme Company LLC"))
	assert.Equal(t, "aquacare", CanonicalCompact("AquaCare Holdings UK"))
	assert.Equal(t, "brightpath", CanonicalCompact("BrightPath International Ltd"))

	// Stop words embedded in a token are not stripped
	assert.Equal(t, "costco", CanonicalCompact("Costco"))

	// All-stop-word names fall back to the compact form
	assert.Equal(t, "thecompany", CanonicalCompact("The Company"))
}

func TestCanonicalCompactDeterministic(t *testing.T) {
	inputs := []string{"Acme Inc.", "  acme, inc ", "ACME INC"}
	for _, in := range inputs {
		assert.Equal(t, "acme", CanonicalCompact(in), "input: %q", in)
	}
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "amz-12345-us", ClientID("  AMZ-12345-US "))
}

func TestRegistry(t *testing.T) {
	fn, ok := Get("canonical")
	assert.True(t, ok)
	assert.Equal(t, "acme", fn("Acme Inc."))

	assert.Equal(t, "unchanged", Apply("unchanged", "no_such_normalizer"))
}
