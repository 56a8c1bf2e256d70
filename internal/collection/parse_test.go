package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <COLLECTION Entries="3">
    <TRACK Location="file://localhost/Music/a.mp3" Name="Alpha" Artist="Artist A" Tonality="8A" Rating="255"/>
    <TRACK Location="file://localhost/Music/b.mp3" Name="Beta" Artist="Artist B" AverageBpm="128.00">
      <TEMPO Inizio="0.205" Bpm="128.00" Metro="4/4" Battito="1"/>
      <POSITION_MARK Name="" Type="0" Start="0.205" Num="-1"/>
    </TRACK>
    <TRACK Location="file://localhost/Music/c.mp3" Name="Gamma" Artist="Artist C"/>
  </COLLECTION>
  <PLAYLISTS>
    <NODE Type="0" Name="ROOT" Count="3">
      <NODE Type="0" Name="   2020 dec rap" Count="1">
        <NODE Type="1" Name="warmup" Entries="3">
          <TRACK Key="file://localhost/Music/b.mp3"/>
          <TRACK Key="file://localhost/Music/a.mp3"/>
          <TRACK Key="file://localhost/Music/a.mp3"/>
        </NODE>
      </NODE>
      <NODE Type="1" Name="    -- ALL VINYL" Entries="1">
        <TRACK Key="file://localhost/Music/gone.mp3"/>
      </NODE>
      <NODE Type="0" Name="empty" Count="0"/>
    </NODE>
  </PLAYLISTS>
</DJ_PLAYLISTS>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "1.0.0", doc.Version)

	// Track pool
	assert.Equal(t, 3, doc.Pool.Len())
	track, ok := doc.Pool.Lookup("file://localhost/Music/a.mp3")
	require.True(t, ok)
	assert.Equal(t, "Alpha", track.Get("Name"))
	assert.Equal(t, "Artist A", track.Get("Artist"))

	// Playlist tree
	require.NotNil(t, doc.Root)
	assert.Equal(t, NodeFolder, doc.Root.Type)
	assert.Equal(t, "ROOT", doc.Root.Name)
	require.Len(t, doc.Root.Children, 3)

	folder := doc.Root.Children[0]
	assert.Equal(t, NodeFolder, folder.Type)
	assert.Equal(t, "   2020 dec rap", folder.Name, "leading whitespace must survive parsing")

	playlist := folder.Children[0]
	assert.Equal(t, NodePlaylist, playlist.Type)
	require.Len(t, playlist.Refs, 3)
	assert.Equal(t, "file://localhost/Music/b.mp3", playlist.Refs[0].Key)
	assert.Equal(t, "file://localhost/Music/a.mp3", playlist.Refs[1].Key)
	assert.Equal(t, "file://localhost/Music/a.mp3", playlist.Refs[2].Key, "duplicate references are preserved")

	vinyl := doc.Root.Children[1]
	assert.Equal(t, "    -- ALL VINYL", vinyl.Name)
	assert.True(t, doc.Orphan("file://localhost/Music/gone.mp3"), "dangling reference is a known orphan, not an error")
}

func TestParseCapturesUnknownAttributesAndPayload(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	track, ok := doc.Pool.Lookup("file://localhost/Music/b.mp3")
	require.True(t, ok)

	// Unmodeled attributes land in the ordered bag
	bpm, ok := track.Attrs.Get("AverageBpm")
	assert.True(t, ok)
	assert.Equal(t, "128.00", bpm)

	// Unmodeled child elements are carried as raw payload, in order
	require.Len(t, track.Payload, 2)
	assert.Equal(t, "TEMPO", track.Payload[0].Name)
	assert.Equal(t, "POSITION_MARK", track.Payload[1].Name)
	inizio, ok := track.Payload[0].Attrs.Get("Inizio")
	assert.True(t, ok)
	assert.Equal(t, "0.205", inizio)
}

func TestParseCountMismatchIsNotFatal(t *testing.T) {
	// Declared counts are a sanity check; live content wins.
	input := `<DJ_PLAYLISTS Version="1.0.0">
		<COLLECTION Entries="99"></COLLECTION>
		<PLAYLISTS><NODE Type="0" Name="ROOT" Count="42"/></PLAYLISTS>
	</DJ_PLAYLISTS>`

	doc, err := Parse([]byte(input))

	require.NoError(t, err)
	assert.Equal(t, 0, doc.Pool.Len())
	assert.Empty(t, doc.Root.Children)
}

func TestParseFormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "not xml",
			input: "definitely not a collection export",
		},
		{
			name:  "wrong root element",
			input: `<LIBRARY Version="1"><COLLECTION/><PLAYLISTS><NODE Type="0" Name="ROOT"/></PLAYLISTS></LIBRARY>`,
		},
		{
			name:  "missing collection",
			input: `<DJ_PLAYLISTS Version="1"><PLAYLISTS><NODE Type="0" Name="ROOT"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "missing playlist tree root",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "playlist root is a playlist",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="1" Name="ROOT"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "unknown node type",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="7" Name="ROOT"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "node without name",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="0"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "track reference inside a folder",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="0" Name="ROOT"><TRACK Key="x"/></NODE></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "nested node inside a playlist",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="0" Name="ROOT"><NODE Type="1" Name="p"><NODE Type="1" Name="q"/></NODE></NODE></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "collection track without location",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION><TRACK Name="x"/></COLLECTION><PLAYLISTS><NODE Type="0" Name="ROOT"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "playlist reference without key",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><PLAYLISTS><NODE Type="0" Name="ROOT"><NODE Type="1" Name="p"><TRACK/></NODE></NODE></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "duplicate collection",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/><COLLECTION/><PLAYLISTS><NODE Type="0" Name="ROOT"/></PLAYLISTS></DJ_PLAYLISTS>`,
		},
		{
			name:  "truncated document",
			input: `<DJ_PLAYLISTS Version="1"><COLLECTION/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			assert.Nil(t, doc, "no partially parsed document may escape")
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}
