package types

import "errors"

var (
	// ErrConfig marks missing or invalid configuration. Fatal before any I/O.
	ErrConfig = errors.New("configuration error")
	// ErrStorage marks a daily store that cannot be created or written.
	ErrStorage = errors.New("storage error")
	// ErrParse marks a daily store that cannot be read.
	ErrParse = errors.New("parse error")
	// ErrSource marks a failed announcement list fetch.
	ErrSource = errors.New("source error")
	// ErrDirectory marks a subscriber directory that cannot be reached or read.
	ErrDirectory = errors.New("subscriber directory error")
	// ErrDelivery marks a single failed send. Never fatal.
	ErrDelivery = errors.New("delivery error")
)
