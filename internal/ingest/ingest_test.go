package ingest

import (
	"testing"

	"resource-map/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptors(t *testing.T) {
	c := &catalog.Catalog{
		Toggles: []catalog.Toggle{
			{ID: "health", Kind: catalog.KindCategory, Label: "Health"},
			{ID: "free", Kind: catalog.KindFeature, Label: "Free"},
		},
		Entries: []catalog.Entry{
			{ID: "a", Categories: []string{"health", "shelter"}, Features: []string{"free"}, Details: map[string]string{"hours": "9-5"}},
			{ID: "b", Categories: []string{"dental"}, Requirements: []string{"id_required"}, Details: map[string]string{"phone": "555"}},
		},
	}
	ds := buildDescriptors(c)
	require.Len(t, ds, 5)

	assert.Equal(t, "categories", ds[0].Name)
	assert.Equal(t, []string{"Health", "dental", "shelter"}, ds[0].Vals)
	assert.Equal(t, 2, ds[0].index["shelter"])

	assert.Equal(t, "features", ds[1].Name)
	assert.Equal(t, []string{"Free"}, ds[1].Vals)

	assert.Equal(t, "requirements", ds[2].Name)
	assert.Equal(t, []string{"id_required"}, ds[2].Vals)

	assert.Equal(t, "hours", ds[3].Name)
	assert.Nil(t, ds[3].Vals)
	assert.Equal(t, "phone", ds[4].Name)
}

func TestBuildDescriptors_RoundTripsTags(t *testing.T) {
	c, err := catalog.LoadFile("../../data/catalog.yaml")
	require.NoError(t, err)
	ds := buildDescriptors(c)
	for _, d := range ds[:3] {
		kind := kindOf(d.Name)
		for _, e := range c.Entries {
			for _, tag := range tagsOf(e, kind) {
				i, ok := d.index[tag]
				require.True(t, ok, tag)
				assert.Equal(t, tag, catalog.NormalizeTag(d.Vals[i]))
			}
		}
	}
}
