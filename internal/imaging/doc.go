// Package imaging provides the frame-level image operations used by the boat
// detector.
//
// This package covers loading and caching frames, resizing them to the run's
// fixed frame size, rotating a frame about its centre without changing its
// dimensions, cutting a horizontal band out of a frame, converting pixels to
// CIE-Lab features, and rendering debug strips and overlays. All operations
// work with standard Go image.Image types.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Images returned by this package always have their bounds anchored at (0,0),
// whatever the bounds of the input.
//
// # Rotation
//
// Positive angles rotate counter-clockwise as seen on screen, the same
// convention as github.com/disintegration/imaging. RotateKeepSize and
// RotatePoint agree on that convention, so a point mapped by RotatePoint lands
// on the same pixel content in the rotated frame.
//
// # Thread Safety
//
// The FrameCache type is safe for concurrent use. The other operations are
// stateless and never modify their inputs.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O or decoding errors during frame loading
//   - Band specifications that are empty after clamping
//   - Encoding errors during image output
package imaging
