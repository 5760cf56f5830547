package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsInc(t *testing.T) {
	c := NewCounts()
	c.Inc("courses")
	c.Inc("resto")
	c.Inc("courses")

	assert.Equal(t, 2, c.Get("courses"))
	assert.Equal(t, 1, c.Get("resto"))
	assert.Equal(t, 0, c.Get("absent"))
	assert.True(t, c.Has("resto"))
	assert.False(t, c.Has("absent"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"courses", "resto"}, c.Keys())
}

func TestCountsJSONRoundTripPreservesOrder(t *testing.T) {
	c := NewCounts()
	c.Inc("zebra")
	c.Inc("alpha")
	c.Inc("milieu")
	c.Inc("zebra")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zebra":2,"alpha":1,"milieu":1}`, string(data))
	assert.Equal(t, `{"zebra":2,"alpha":1,"milieu":1}`, string(data), "keys must serialize in insertion order")

	decoded := NewCounts()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"zebra", "alpha", "milieu"}, decoded.Keys())
	assert.Equal(t, 2, decoded.Get("zebra"))
}

func TestCountsUnmarshalRejectsNonObject(t *testing.T) {
	c := NewCounts()
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), c))
}

func TestVendorTable(t *testing.T) {
	v := NewVendorTable()
	v.Inc("CARREFOUR", "courses")
	v.Inc("CARREFOUR", "bio")
	v.Inc("CARREFOUR", "courses")
	v.Inc("SNCF", "transport")

	assert.True(t, v.Known("CARREFOUR"))
	assert.False(t, v.Known("BIOCOOP"))
	assert.Equal(t, []string{"courses", "bio"}, v.TagsFor("CARREFOUR"))
	assert.Nil(t, v.TagsFor("BIOCOOP"))
	assert.Equal(t, []string{"CARREFOUR", "SNCF"}, v.Vendors())
	assert.Equal(t, 2, v.Len())
}

func TestVendorTableJSONRoundTripPreservesOrder(t *testing.T) {
	v := NewVendorTable()
	v.Inc("SNCF", "transport")
	v.Inc("CARREFOUR", "courses")
	v.Inc("CARREFOUR", "bio")

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"SNCF":{"transport":1},"CARREFOUR":{"courses":1,"bio":1}}`, string(data))

	decoded := NewVendorTable()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"SNCF", "CARREFOUR"}, decoded.Vendors())
	assert.Equal(t, []string{"courses", "bio"}, decoded.TagsFor("CARREFOUR"))
}
