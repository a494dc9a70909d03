// Package sidecar reads and writes the <videoName>.json file that
// accompanies each recording: a Deferred record immediately after
// recording stops (highlights only), later rewritten in place to a
// Metadata record once the collector resolves the finished game.
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lol-match-exporter/internal/lcutypes"
)

// PathFor returns the sidecar path for a given video file path.
func PathFor(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return videoPath[:len(videoPath)-len(ext)] + ".json"
}

// WriteDeferred persists a Deferred sidecar immediately after a
// recording stops, before metadata collection has run.
func WriteDeferred(videoPath string, highlights []float64) error {
	return write(videoPath, lcutypes.MetadataFile{
		Kind:       lcutypes.SidecarDeferred,
		Highlights: highlights,
	})
}

// WriteMetadata rewrites the sidecar in place with resolved metadata,
// preserving the existing highlights/favorite fields.
func WriteMetadata(videoPath string, meta lcutypes.GameMetadata) error {
	existing, err := Read(videoPath)
	if err != nil {
		existing = lcutypes.MetadataFile{}
	}
	existing.Kind = lcutypes.SidecarMetadata
	existing.Metadata = &meta
	return write(videoPath, existing)
}

// Read loads the sidecar for a recording, if present.
func Read(videoPath string) (lcutypes.MetadataFile, error) {
	var out lcutypes.MetadataFile
	data, err := os.ReadFile(PathFor(videoPath))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("sidecar: decode %s: %w", videoPath, err)
	}
	return out, nil
}

// SetFavorite flips the favorite flag on an existing sidecar.
func SetFavorite(videoPath string, favorite bool) error {
	existing, err := Read(videoPath)
	if err != nil {
		return fmt.Errorf("sidecar: read before favorite toggle: %w", err)
	}
	existing.Favorite = favorite
	return write(videoPath, existing)
}

// write persists the sidecar atomically: encode to a temp file in the
// same directory, then rename over the destination, so a crash
// mid-write never leaves a truncated or invalid sidecar behind.
func write(videoPath string, file lcutypes.MetadataFile) error {
	dest := PathFor(videoPath)
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("sidecar: marshal: %w", err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("sidecar: write temp: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("sidecar: rename into place: %w", err)
	}
	return nil
}
