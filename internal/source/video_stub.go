//go:build !withcv
// +build !withcv

package source

import (
	"fmt"
	"log/slog"
)

// OpenVideo is a stub used when OpenCV support is disabled.
// Build with -tags=withcv to read video files and capture devices.
func OpenVideo(spec string, width, height int, logger *slog.Logger) (FrameSource, error) {
	return nil, fmt.Errorf("open %q: %w", spec, ErrVideoUnsupported)
}
