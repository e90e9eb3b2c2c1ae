package detection

import "errors"

var (
	// ErrNoHorizonFound is returned when no stable sky/sea boundary can be fitted.
	ErrNoHorizonFound = errors.New("no horizon found")

	// ErrInvalidROI is returned when the band around the horizon is empty after clamping.
	ErrInvalidROI = errors.New("invalid region of interest")

	// ErrInvalidHorizon is returned for a horizon whose direction is the zero vector.
	ErrInvalidHorizon = errors.New("horizon direction must be non-zero")
)
