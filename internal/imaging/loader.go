package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// FrameCache provides thread-safe caching of decoded frames to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once a frame
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// # Memory Management
//
// Cached frames remain in memory until explicitly removed via Evict() or Clear().
// Streaming callers that read each frame once should Evict after use.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]image.Image
}

// NewFrameCache creates and initializes a new empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]image.Image),
	}
}

// Load retrieves a frame from the cache or decodes it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG and GIF.
//
// Returns:
//   - image.Image: The decoded frame. EXIF orientation is applied for JPEG input.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The frame is cached using the exact path string provided.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}

	c.mu.Lock()
	c.frames[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len reports how many frames are cached.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// FrameInfo contains metadata about a frame file.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif" or "unknown", detected by file extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame through the cache and returns its metadata.
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        FormatOf(path),
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatOf maps a file extension to a frame format name.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return "unknown"
}
