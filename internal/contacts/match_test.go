package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

var weddingHeaders = []string{"Name", "Phone", "Mehendi", "Sangeet"}

func rule(filters ...domain.Filter) domain.FilterRule {
	return domain.FilterRule{Filters: filters, Template: "Hi {name}"}
}

func TestMatch_CaseInsensitive(t *testing.T) {
	row := []string{"Ann", "+1555", "Yes", "No"}

	out := Match(row, weddingHeaders, rule(domain.Filter{Category: "Mehendi", Value: "yes"}))
	assert.True(t, out.Matched)

	out = Match(row, weddingHeaders, rule(domain.Filter{Category: "Sangeet", Value: "yes"}))
	assert.False(t, out.Matched)
	assert.Equal(t, "Sangeet", out.FailedCategory)
	assert.Contains(t, out.Reason, "expected 'yes', got 'No'")
}

func TestMatch_TrimsCell(t *testing.T) {
	row := []string{"Ann", "+1555", "  yes \t", "No"}

	out := Match(row, weddingHeaders, rule(domain.Filter{Category: "Mehendi", Value: "YES"}))
	assert.True(t, out.Matched)
}

func TestMatch_EmptyFiltersMatchEverything(t *testing.T) {
	assert.True(t, Match([]string{}, weddingHeaders, rule()).Matched)
	assert.True(t, Match([]string{"Ann"}, nil, rule()).Matched)
}

func TestMatch_MissingColumn(t *testing.T) {
	out := Match([]string{"Ann", "+1555", "Yes", "Yes"}, weddingHeaders, rule(domain.Filter{Category: "Reception", Value: "Yes"}))

	assert.False(t, out.Matched)
	assert.Equal(t, "Reception", out.FailedCategory)
	assert.Equal(t, "column not found", out.Reason)
}

func TestMatch_ShortRow(t *testing.T) {
	out := Match([]string{"Ann", "+1555", "Yes"}, weddingHeaders, rule(domain.Filter{Category: "Sangeet", Value: "Yes"}))

	assert.False(t, out.Matched)
	assert.Equal(t, "no value in row", out.Reason)
}

func TestMatch_FirstFailingFilterReported(t *testing.T) {
	row := []string{"Ann", "+1555", "No", "No"}

	out := Match(row, weddingHeaders, rule(
		domain.Filter{Category: "Sangeet", Value: "Yes"},
		domain.Filter{Category: "Mehendi", Value: "Yes"},
	))

	assert.False(t, out.Matched)
	assert.Equal(t, "Sangeet", out.FailedCategory)
}

func TestMatch_DuplicateHeaderUsesFirstOccurrence(t *testing.T) {
	headers := []string{"Name", "Phone", "Group", "Group"}

	assert.True(t, Match([]string{"Ann", "+1", "A", "B"}, headers, rule(domain.Filter{Category: "Group", Value: "a"})).Matched)
	assert.False(t, Match([]string{"Ann", "+1", "A", "B"}, headers, rule(domain.Filter{Category: "Group", Value: "b"})).Matched)
}
