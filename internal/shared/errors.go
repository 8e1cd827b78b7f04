package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Playlist parsing errors
	ErrInvalidAttributeValue = fmt.Errorf("invalid attribute value")
	ErrInvalidDuration       = fmt.Errorf("invalid duration")
	ErrNoDataAvailable       = fmt.Errorf("no data available")
	ErrMalformedEntry        = fmt.Errorf("malformed entry")

	// Source and sink lifecycle errors
	ErrInvalidParameter = fmt.Errorf("invalid parameter")
	ErrAlreadyOpened    = fmt.Errorf("already opened")
	ErrNotOpened        = fmt.Errorf("not opened")
	ErrMissingFilename  = fmt.Errorf("missing filename")
	ErrMissingSource    = fmt.Errorf("missing filename or url")
	ErrDownload         = fmt.Errorf("download error")
	ErrUnknownEncoding  = fmt.Errorf("unknown encoding")

	// API and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrEntryNotFound      = fmt.Errorf("entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
