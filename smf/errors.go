package smf

import "github.com/pkg/errors"

var (
	ErrTruncatedInput    = errors.New("truncated input")
	ErrVLQOverflow       = errors.New("variable-length quantity too long")
	ErrMalformedHeader   = errors.New("malformed header")
	ErrNoRunningStatus   = errors.New("data byte with no running status")
	ErrUnsupportedStatus = errors.New("unsupported status byte")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrSMPTETiming       = errors.New("SMPTE time division is not supported")
)
