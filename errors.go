package ismrx

import "errors"

var (
	// ErrSampleFormatMismatch is returned by Session.FeedBuffer when the
	// Session's configured SampleFormat is not one of the defined
	// formats. NewSession does not check the format, so the error
	// surfaces on the first buffer, not at session creation.
	ErrSampleFormatMismatch = errors.New("ismrx: sample format mismatch")

	// ErrBufferTooShort is returned by Session.FeedBuffer for a CF32
	// buffer whose length is not a whole number of 4-byte floats. The
	// AM low-pass filter does not return it: given fewer than
	// amfront.FilterOrder samples it returns without writing output.
	ErrBufferTooShort = errors.New("ismrx: buffer too short for filter")

	// ErrPulseCapOverflow marks a burst that hit the pulse cap before
	// its reset limit: the burst is still delivered, but truncated.
	ErrPulseCapOverflow = errors.New("ismrx: pulse cap overflow, burst truncated")
)
