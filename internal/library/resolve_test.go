package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/dj-collection-server/internal/collection"
)

func TestResolveTracks(t *testing.T) {
	doc := parseSidebarDoc(t)

	tracks, err := ResolveTracks(doc, "/   2020 dec rap/warmup")

	require.NoError(t, err)
	require.Len(t, tracks, 3)

	assert.Equal(t, "Beta", tracks[0].Title)
	assert.Equal(t, "Artist B", tracks[0].Artist)
	assert.False(t, tracks[0].Orphaned)

	// Stored order with duplicates preserved
	assert.Equal(t, "file://a.mp3", tracks[1].Key)
	assert.Equal(t, "file://a.mp3", tracks[2].Key)
	assert.Equal(t, "Alpha", tracks[1].Title)
	assert.Equal(t, tracks[1], tracks[2])
}

func TestResolveTracksOrphanedReference(t *testing.T) {
	doc := parseSidebarDoc(t)

	tracks, err := ResolveTracks(doc, "/   2020 dec rap/peak")

	require.NoError(t, err, "an orphaned reference is data, not an error")
	require.Len(t, tracks, 1)
	assert.True(t, tracks[0].Orphaned)
	assert.Equal(t, "file://missing.mp3", tracks[0].Key)
	assert.Empty(t, tracks[0].Title)
}

func TestResolveTracksNotFound(t *testing.T) {
	doc := parseSidebarDoc(t)

	// Unknown path
	_, err := ResolveTracks(doc, "/no/such/playlist")
	assert.ErrorIs(t, err, collection.ErrNotFound)

	// Path addressing a folder
	_, err = ResolveTracks(doc, "/   2020 dec rap")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestResolveTracksExposesPassthroughFields(t *testing.T) {
	doc := parseSidebarDoc(t)

	tracks, err := ResolveTracks(doc, "/dupe#1")

	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Alpha", tracks[0].Fields["Name"])
	assert.Equal(t, "file://a.mp3", tracks[0].Fields["Location"])
}

func TestLocate(t *testing.T) {
	doc := parseSidebarDoc(t)

	// Root
	loc, err := Locate(doc, "")
	require.NoError(t, err)
	assert.Same(t, doc.Root, loc.Node)
	assert.Nil(t, loc.Parent)

	// Nested node with parent and index
	loc, err = Locate(doc, "/   2020 dec rap/peak")
	require.NoError(t, err)
	assert.Equal(t, "peak", loc.Node.Name)
	assert.Equal(t, "   2020 dec rap", loc.Parent.Name)
	assert.Equal(t, 1, loc.Index)

	// Duplicate siblings resolve to distinct nodes
	first, err := Locate(doc, "/dupe#0")
	require.NoError(t, err)
	second, err := Locate(doc, "/dupe#1")
	require.NoError(t, err)
	assert.NotSame(t, first.Node, second.Node)
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 2, second.Index)
}
