package model

import "errors"

var (
	// ErrUnsupportedMiller is returned for an index outside the known
	// equivalence families.
	ErrUnsupportedMiller = errors.New("unsupported Miller index")

	// ErrNoSlab is returned when the geometry engine yields no candidate.
	ErrNoSlab = errors.New("no valid slab for requested configuration")

	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidConfig is returned for an app config whose defaults could
	// not produce a valid run.
	ErrInvalidConfig = errors.New("invalid config")
)
