package server

import "github.com/jaki95/dj-collection-server/internal/instance"

// CollectionStatusResponse reports whether a collection exists for the
// caller and which backing holds it.
type CollectionStatusResponse struct {
	Exists  bool                 `json:"exists"`
	Backing instance.BackingMode `json:"backing,omitempty"`
}

// RenameRequest renames the node at Path. Name is stored verbatim,
// whitespace included.
type RenameRequest struct {
	Path string `json:"path"`
	Name string `json:"name" binding:"required"`
}

// CreateNodeRequest creates a playlist or folder under ParentPath.
type CreateNodeRequest struct {
	ParentPath string `json:"parentPath"`
	Name       string `json:"name" binding:"required"`
}

// ReorderRequest rearranges a playlist's entries; Order must be a
// permutation of the current indices.
type ReorderRequest struct {
	Path  string `json:"path" binding:"required"`
	Order []int  `json:"order" binding:"required"`
}

// AppendTrackRequest appends a track reference to the playlist at Path.
type AppendTrackRequest struct {
	Path string `json:"path" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// MoveRequest relocates the node at Path into the folder at ToPath.
type MoveRequest struct {
	Path   string `json:"path" binding:"required"`
	ToPath string `json:"toPath"`
	Index  int    `json:"index"`
}
