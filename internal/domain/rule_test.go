package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters_UnmarshalKeepsOrder(t *testing.T) {
	var rule FilterRule
	err := json.Unmarshal([]byte(`{"filters":{"Sangeet":"Yes","Mehendi":"no","Age":"30"},"template":"Hi {name}"}`), &rule)
	require.NoError(t, err)

	require.Len(t, rule.Filters, 3)
	assert.Equal(t, Filter{Category: "Sangeet", Value: "Yes"}, rule.Filters[0])
	assert.Equal(t, Filter{Category: "Mehendi", Value: "no"}, rule.Filters[1])
	assert.Equal(t, Filter{Category: "Age", Value: "30"}, rule.Filters[2])
	assert.Equal(t, "Sangeet=Yes, Mehendi=no, Age=30", rule.Filters.String())
}

func TestFilters_MarshalRoundTripsAsObject(t *testing.T) {
	f := Filters{{Category: "B", Value: "1"}, {Category: "A", Value: "2"}}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":"1","A":"2"}`, string(data))
	assert.Equal(t, `{"B":"1","A":"2"}`, string(data))
}

func TestFilters_RejectsNonStringValues(t *testing.T) {
	var f Filters
	assert.Error(t, json.Unmarshal([]byte(`{"Age":30}`), &f))
	assert.Error(t, json.Unmarshal([]byte(`["Age"]`), &f))
}

func TestFilters_NullAndEmpty(t *testing.T) {
	var f Filters
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Nil(t, f)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &f))
	assert.Empty(t, f)
	assert.Equal(t, "", f.String())
}

func TestParseSendTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	got, err := ParseSendTime("2025-02-14T18:30", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 2, 14, 18, 30, 0, 0, loc)))

	got, err = ParseSendTime("2025-02-14T18:30:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 2, 14, 18, 30, 0, 0, time.UTC)))

	got, err = ParseSendTime("  ", loc)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseSendTime("tomorrow", loc)
	assert.Error(t, err)
}
