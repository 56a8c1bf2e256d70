package server

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/dj-collection-server/internal/collection"
	"github.com/jaki95/dj-collection-server/internal/instance"
)

// locatorFor picks the active locator for a user: a live memory upload wins,
// otherwise the deterministic durable path.
func (s *Server) locatorFor(user string) instance.Locator {
	if s.manager.HasMemoryInstance(user) {
		return instance.MemoryLocator()
	}
	return instance.DurableLocator(s.manager.StoragePath(user))
}

func (s *Server) service(c *gin.Context) (*instance.Instance, bool) {
	user := userID(c)
	inst, err := s.manager.GetService(c.Request.Context(), user, s.locatorFor(user))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return inst, true
}

// getCollectionStatus reports whether the caller has a collection and where
// it lives.
func (s *Server) getCollectionStatus(c *gin.Context) {
	exists, backing := s.manager.HasCollection(c.Request.Context(), userID(c))
	c.JSON(200, CollectionStatusResponse{Exists: exists, Backing: backing})
}

// uploadCollection ingests a raw collection export. The body is the
// document itself; ?backing=durable persists it, the default keeps it in
// memory only.
func (s *Server) uploadCollection(c *gin.Context) {
	user := userID(c)

	limit := s.cfg.Limits.MaxDocumentBytes
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		respondError(c, fmt.Errorf("%w: failed to read upload: %v", collection.ErrValidation, err))
		return
	}
	if int64(len(data)) > limit {
		respondError(c, fmt.Errorf("%w: document exceeds %d bytes", collection.ErrValidation, limit))
		return
	}
	if len(data) == 0 {
		respondError(c, fmt.Errorf("%w: empty document", collection.ErrValidation))
		return
	}

	loc := instance.MemoryLocator()
	if c.Query("backing") == string(instance.BackingDurable) {
		loc = instance.DurableLocator(s.manager.StoragePath(user))
	}

	inst, err := s.manager.ReplaceDocument(c.Request.Context(), user, data, loc)
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Collection uploaded", "user", user, "backing", loc.Mode, "bytes", len(data))
	c.JSON(201, gin.H{
		"message": "Collection stored",
		"backing": inst.Locator.Mode,
	})
}

// deleteCollection discards the caller's collection: the cached instance
// and any memory-backed bytes.
func (s *Server) deleteCollection(c *gin.Context) {
	s.manager.Evict(userID(c))
	c.JSON(200, gin.H{"message": "Collection removed"})
}

// getRawDocument serializes the caller's current tree back into export
// bytes.
func (s *Server) getRawDocument(c *gin.Context) {
	inst, ok := s.service(c)
	if !ok {
		return
	}

	data, err := inst.RawDocument()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(200, "application/xml", data)
}

// getSidebar returns the full sidebar projection of the caller's tree.
func (s *Server) getSidebar(c *gin.Context) {
	inst, ok := s.service(c)
	if !ok {
		return
	}
	c.JSON(200, inst.Sidebar())
}

// getPlaylistTracks resolves the playlist at ?path= into its ordered track
// list.
func (s *Server) getPlaylistTracks(c *gin.Context) {
	inst, ok := s.service(c)
	if !ok {
		return
	}

	tracks, err := inst.PlaylistTracks(c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, tracks)
}

// createPlaylist adds an empty playlist under the given parent folder.
func (s *Server) createPlaylist(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.CreatePlaylist(c.Request.Context(), req.ParentPath, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, gin.H{"message": "Playlist created"})
}

// createFolder adds an empty folder under the given parent folder.
func (s *Server) createFolder(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.CreateFolder(c.Request.Context(), req.ParentPath, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, gin.H{"message": "Folder created"})
}

// renameNode renames the node at the given path, raw name stored verbatim.
func (s *Server) renameNode(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.RenameNode(c.Request.Context(), req.Path, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Renamed"})
}

// moveNode relocates a node into another folder.
func (s *Server) moveNode(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.MoveNode(c.Request.Context(), req.Path, req.ToPath, req.Index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Moved"})
}

// removeNode removes the node at ?path= from its parent.
func (s *Server) removeNode(c *gin.Context) {
	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.RemoveNode(c.Request.Context(), c.Query("path")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Removed"})
}

// reorderPlaylist rearranges a playlist's track references.
func (s *Server) reorderPlaylist(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.ReorderPlaylist(c.Request.Context(), req.Path, req.Order); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Reordered"})
}

// appendTrack appends a track reference to a playlist.
func (s *Server) appendTrack(c *gin.Context) {
	var req AppendTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	inst, ok := s.service(c)
	if !ok {
		return
	}
	if err := inst.AppendTrack(c.Request.Context(), req.Path, req.Key); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Track appended"})
}
