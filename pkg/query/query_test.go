package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "?", "   "} {
		p, err := Parse(raw)
		require.NoError(t, err)
		assert.Empty(t, p.Filter)
		assert.Empty(t, p.Sort)
	}
}

func TestParse_EqualityCasts(t *testing.T) {
	p, err := Parse("?name=alice&age=30&score=4.5&isActive=true&image=null&zip=%2201234%22")
	require.NoError(t, err)

	assert.Equal(t, "alice", p.Filter["name"])
	assert.Equal(t, int64(30), p.Filter["age"])
	assert.Equal(t, 4.5, p.Filter["score"])
	assert.Equal(t, true, p.Filter["isActive"])
	assert.Nil(t, p.Filter["image"])
	assert.Contains(t, p.Filter, "image")
	assert.Equal(t, "01234", p.Filter["zip"])
}

func TestParse_ComparisonOperators(t *testing.T) {
	p, err := Parse("age>=18&age<65&rank>2&level<=9&role!=guest")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$gte": int64(18), "$lt": int64(65)}, p.Filter["age"])
	assert.Equal(t, map[string]any{"$gt": int64(2)}, p.Filter["rank"])
	assert.Equal(t, map[string]any{"$lte": int64(9)}, p.Filter["level"])
	assert.Equal(t, map[string]any{"$ne": "guest"}, p.Filter["role"])
}

func TestParse_Lists(t *testing.T) {
	p, err := Parse("role=admin,owner&status!=banned,deleted")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$in": []any{"admin", "owner"}}, p.Filter["role"])
	assert.Equal(t, map[string]any{"$nin": []any{"banned", "deleted"}}, p.Filter["status"])
}

func TestParse_Existence(t *testing.T) {
	p, err := Parse("phone&!image")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$exists": true}, p.Filter["phone"])
	assert.Equal(t, map[string]any{"$exists": false}, p.Filter["image"])
}

func TestParse_Regex(t *testing.T) {
	p, err := Parse("name=/^jo/i&email=/example/")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$regex": "^jo", "$options": "i"}, p.Filter["name"])
	assert.Equal(t, map[string]any{"$regex": "example"}, p.Filter["email"])
}

func TestParse_Sort(t *testing.T) {
	p, err := Parse("sort=-createdAt,+name,email&name=bob")
	require.NoError(t, err)

	assert.Equal(t, []SortField{
		{Field: "createdAt", Desc: true},
		{Field: "name"},
		{Field: "email"},
	}, p.Sort)
	assert.NotContains(t, p.Filter, "sort")
}

func TestParse_ReservedKeysDropped(t *testing.T) {
	p, err := Parse("skip=10&limit=5&fields=name&projection=email&populate=x&name=a")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "a"}, p.Filter)
}

func TestParse_PaginationKeysPassThrough(t *testing.T) {
	// current/pageSize are stripped by the caller, not here
	p, err := Parse("current=2&pageSize=20")
	require.NoError(t, err)

	assert.Equal(t, int64(2), p.Filter["current"])
	assert.Equal(t, int64(20), p.Filter["pageSize"])
}

func TestParse_InvalidFieldNamesIgnored(t *testing.T) {
	p, err := Parse("$where=1&a b=2&ok=1")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"ok": int64(1)}, p.Filter)
}

func TestParse_BadEscape(t *testing.T) {
	_, err := Parse("name=%zz")
	assert.Error(t, err)
}

func TestParser_Value(t *testing.T) {
	p, err := Parser{}.Parse("name=x")
	require.NoError(t, err)
	assert.Equal(t, "x", p.Filter["name"])
}
