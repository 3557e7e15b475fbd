package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(t *testing.T, parsed map[string]json.RawMessage) []string {
	t.Helper()
	raw, ok := parsed["product_names"]
	require.True(t, ok, "product_names missing")

	var out []string
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRepairParse_ValidObject(t *testing.T) {
	parsed, err := RepairParse(`{"product_names":["A","B","C"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(t, parsed))
}

func TestRepairParse_FencedEqualsBare(t *testing.T) {
	bare, err := RepairParse(`{"product_names":["A","B","C"]}`)
	require.NoError(t, err)

	fenced, err := RepairParse("```json\n{\"product_names\":[\"A\",\"B\",\"C\"]}\n```")
	require.NoError(t, err)

	assert.Equal(t, names(t, bare), names(t, fenced))
}

func TestRepairParse_FenceWithoutLanguageTag(t *testing.T) {
	parsed, err := RepairParse("```\n{\"product_names\":[\"A\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(t, parsed))
}

func TestRepairParse_UnclosedFence(t *testing.T) {
	// Truncated output often loses the closing fence.
	parsed, err := RepairParse("```json\n{\"product_names\":[\"A\",\"B\"]}")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, parsed))
}

func TestRepairParse_LeadingProse(t *testing.T) {
	parsed, err := RepairParse(`Here are the alternatives: {"product_names":["A","B"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, parsed))
}

func TestRepairParse_TrailingProse(t *testing.T) {
	parsed, err := RepairParse(`{"product_names":["A","B"]} hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, parsed))
}

func TestRepairParse_TruncationRecovery(t *testing.T) {
	parsed, err := RepairParse(`{"product_names":["A","B"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, parsed))
}

func TestRepairParse_TruncatedNestedObject(t *testing.T) {
	parsed, err := RepairParse(`{"product_names":["A","B"],"meta":{"count":2`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, parsed))
}

func TestRepairParse_Unparsable(t *testing.T) {
	_, err := RepairParse("no structured data here at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparsable structured text")
}

func TestRepairParse_ErrorCarriesPreview(t *testing.T) {
	_, err := RepairParse("}}} complete nonsense {{{ that cannot be fixed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonsense")
}
