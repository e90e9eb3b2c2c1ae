// Package detection implements the per-frame boat detection pipeline.
//
// A frame taken from a shore or vessel camera is analysed in five steps:
//
//  1. Horizon estimation: pixels are clustered into sky and sea with a
//     deterministic two-centroid k-means in CIE-Lab space, the sky/sea split
//     row is found in every column, and a line is fitted through the splits.
//  2. Rectification: the frame is rotated about its centre so the horizon is
//     level, and a full-width band of roi_height rows is cut around it.
//  3. Feature extraction: the band is reduced to one score per column with
//     either a Sobel gradient or a difference of Gaussians.
//  4. Temporal smoothing: the scores are blended with the previous frame's
//     smoothed scores by a complementary filter.
//  5. Thresholding: a 1-D median filter removes isolated spikes and every
//     column above mean + margin is marked as a detection.
//
// # Horizon Coordinates
//
// A Horizon is expressed in (row, column) order, the layout a line fit over
// (row, col) samples produces: DX and X0 run down the rows, DY and Y0 along the
// columns. A level horizon therefore has DX == 0, and the rotation that levels
// a horizon is atan(DX/DY). Keep that formula; the band cropping depends on
// it.
//
// # Maps
//
// Feature maps and detection maps are *image.Gray values, one row per
// analysed band and one column per frame column. The live pipeline always
// produces single-row maps; the thresholding code accepts any number of rows
// and treats each row independently so offline analysis can stack frames.
//
// # State and Concurrency
//
// The only state carried between frames is the smoothed feature map kept in a
// SmootherState. A Detector owns exactly one SmootherState and must be fed
// frames in capture order from a single goroutine. Independent streams use
// independent Detectors.
//
// # Errors
//
// ErrNoHorizonFound and ErrInvalidROI abort the current frame and leave the
// smoothing history untouched. Degenerate threshold statistics are not an
// error: the thresholder emits an all-zero detection row.
package detection
