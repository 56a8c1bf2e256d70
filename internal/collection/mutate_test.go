package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)
	return doc
}

func TestInsertChild(t *testing.T) {
	doc := testDocument(t)

	playlist := NewPlaylist("  new crate")
	err := doc.InsertChild(doc.Root, 1, playlist)

	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 4)
	assert.Same(t, playlist, doc.Root.Children[1])
	assert.Equal(t, "  new crate", doc.Root.Children[1].Name, "raw name stored without trimming")

	// Existing order around the insertion point is untouched
	assert.Equal(t, "   2020 dec rap", doc.Root.Children[0].Name)
	assert.Equal(t, "    -- ALL VINYL", doc.Root.Children[2].Name)
}

func TestInsertChildValidation(t *testing.T) {
	doc := testDocument(t)
	playlist := doc.Root.Children[1]

	err := doc.InsertChild(playlist, 0, NewFolder("x"))
	assert.ErrorIs(t, err, ErrValidation)

	err = doc.InsertChild(doc.Root, 99, NewFolder("x"))
	assert.ErrorIs(t, err, ErrValidation)

	err = doc.InsertChild(doc.Root, -1, NewFolder("x"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveChild(t *testing.T) {
	doc := testDocument(t)

	removed, err := doc.RemoveChild(doc.Root, 0)

	require.NoError(t, err)
	assert.Equal(t, "   2020 dec rap", removed.Name)
	require.Len(t, doc.Root.Children, 2)
	assert.Equal(t, "    -- ALL VINYL", doc.Root.Children[0].Name)

	_, err = doc.RemoveChild(doc.Root, 5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRenameKeepsRawName(t *testing.T) {
	doc := testDocument(t)
	folder := doc.Root.Children[0]

	doc.Rename(folder, "   2021 jan rap   ")

	assert.Equal(t, "   2021 jan rap   ", folder.Name)
}

func TestAppendTrackRef(t *testing.T) {
	doc := testDocument(t)
	playlist := doc.Root.Children[0].Children[0]

	err := doc.AppendTrackRef(playlist, "file://localhost/Music/c.mp3")
	require.NoError(t, err)
	assert.Equal(t, "file://localhost/Music/c.mp3", playlist.Refs[len(playlist.Refs)-1].Key)

	// Appending a key missing from the pool is permitted and becomes a
	// known orphan, so serialization still succeeds.
	err = doc.AppendTrackRef(playlist, "file://localhost/Music/nowhere.mp3")
	require.NoError(t, err)
	assert.True(t, doc.Orphan("file://localhost/Music/nowhere.mp3"))

	_, serr := Serialize(doc)
	assert.NoError(t, serr)

	// Folders reject track references
	err = doc.AppendTrackRef(doc.Root, "file://localhost/Music/a.mp3")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReorderTrackRefs(t *testing.T) {
	doc := testDocument(t)
	playlist := doc.Root.Children[0].Children[0]

	err := doc.ReorderTrackRefs(playlist, []int{2, 0, 1})

	require.NoError(t, err)
	assert.Equal(t, "file://localhost/Music/a.mp3", playlist.Refs[0].Key)
	assert.Equal(t, "file://localhost/Music/b.mp3", playlist.Refs[1].Key)
	assert.Equal(t, "file://localhost/Music/a.mp3", playlist.Refs[2].Key)
}

func TestReorderTrackRefsValidation(t *testing.T) {
	doc := testDocument(t)
	playlist := doc.Root.Children[0].Children[0]

	// Wrong length
	err := doc.ReorderTrackRefs(playlist, []int{0, 1})
	assert.ErrorIs(t, err, ErrValidation)

	// Repeated index
	err = doc.ReorderTrackRefs(playlist, []int{0, 0, 1})
	assert.ErrorIs(t, err, ErrValidation)

	// Out of range
	err = doc.ReorderTrackRefs(playlist, []int{0, 1, 3})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoveNode(t *testing.T) {
	doc := testDocument(t)
	from := doc.Root.Children[0]
	to := doc.Root.Children[2]
	moved := from.Children[0]

	err := doc.MoveNode(from, 0, to, 0)

	require.NoError(t, err)
	assert.Empty(t, from.Children)
	require.Len(t, to.Children, 1)
	assert.Same(t, moved, to.Children[0])
	assert.Equal(t, "warmup", to.Children[0].Name, "moved node keeps its own name and contents")
	require.Len(t, to.Children[0].Refs, 3)
}

func TestMoveNodeIntoOwnSubtree(t *testing.T) {
	doc := testDocument(t)
	folder := doc.Root.Children[0]

	err := doc.MoveNode(doc.Root, 0, folder, 0)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, doc.Root.Children, 3, "failed move must not alter the tree")
}

func TestCountsFollowMutations(t *testing.T) {
	doc := testDocument(t)

	require.NoError(t, doc.InsertChild(doc.Root, 0, NewFolder("inbox")))
	_, err := doc.RemoveChild(doc.Root, 3)
	require.NoError(t, err)

	out, err := Serialize(doc)
	require.NoError(t, err)

	// Root had 3 children, gained one, lost one
	assert.Contains(t, string(out), `Name="ROOT" Count="3"`)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Len(t, reparsed.Root.Children, 3)
}
