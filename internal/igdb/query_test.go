package igdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuild(t *testing.T) {
	t.Run("full query", func(t *testing.T) {
		body := NewQuery().
			Fields("id,name").
			Where("category = 0").
			Where("version_parent = null").
			Sort("total_rating_count desc").
			Limit(20).
			Offset(40).
			Build()
		assert.Equal(t, `fields id,name; where category = 0 & version_parent = null; sort total_rating_count desc; limit 20; offset 40;`, body)
	})

	t.Run("search suppresses sort", func(t *testing.T) {
		// IGDB约定：search与sort互斥
		body := NewQuery().
			Fields("id,name").
			Search("halo").
			Sort("rating desc").
			Limit(5).
			Build()
		assert.Equal(t, `fields id,name; search "halo"; limit 5;`, body)
	})

	t.Run("search term is quoted", func(t *testing.T) {
		body := NewQuery().Fields("id").Search(`cyber "punk"`).Build()
		assert.Equal(t, `fields id; search "cyber \"punk\"";`, body)
	})

	t.Run("deterministic output", func(t *testing.T) {
		build := func() string {
			return NewQuery().Fields(gameFields).Where(baseGameFilter).Limit(10).Build()
		}
		assert.Equal(t, build(), build())
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Equal(t, "", NewQuery().Build())
	})

	t.Run("zero limit omitted", func(t *testing.T) {
		assert.Equal(t, "fields id;", NewQuery().Fields("id").Limit(0).Build())
	})
}
