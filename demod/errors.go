package demod

import "errors"

var (
	// errShortLimitRequired is returned when a scheme that classifies
	// intervals against ShortLimit was invoked with ShortLimit unset.
	errShortLimitRequired = errors.New("demod: ShortLimit must be positive")

	// errNoValidSymbols is returned when a precise-tolerance scheme
	// rejects every interval in the burst.
	errNoValidSymbols = errors.New("demod: no interval matched short or long within tolerance")
)
