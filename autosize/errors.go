package autosize

import (
	"errors"
	"fmt"
)

// Error is implemented by every failure the size-resolution pipeline can
// return. The set is closed: callers match on the concrete types with
// errors.As, or on KindOf when only the category matters.
type Error interface {
	error
	autosizeError()
}

// Kind names a failure category in a stable, storable form.
type Kind string

const (
	KindPathExtraction Kind = "path_extraction"
	KindEncoding       Kind = "encoding"
	KindWrongFormat    Kind = "wrong_format"
	KindTransport      Kind = "transport"
	KindRemoteLookup   Kind = "remote_lookup"
	KindSizeNotFound   Kind = "size_not_found"
	KindUnknown        Kind = "unknown"
)

// PathExtractionError is returned when a path has no final component.
type PathExtractionError struct {
	Path string
}

func (e *PathExtractionError) Error() string {
	return fmt.Sprintf("cannot get file name from path %q", e.Path)
}

// EncodingError is returned when the final path component is not valid
// UTF-8.
type EncodingError struct {
	Path    string
	Segment string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot convert file name %q to a UTF-8 string", e.Segment)
}

// WrongFormatError is returned when a file name does not follow the
// NAME-init.csv convention.
type WrongFormatError struct {
	Name string
}

func (e *WrongFormatError) Error() string {
	return fmt.Sprintf("cannot extract instance name from %q: use a NAME%s format instead", e.Name, InitSuffix)
}

// TransportError wraps a failure below HTTP: DNS, connection, TLS, or
// reading the response body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteLookupError is returned when the catalog answers with a non-2xx
// status. Reason is the canonical status text and may be empty.
type RemoteLookupError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *RemoteLookupError) Error() string {
	msg := fmt.Sprintf("GET %s ended with status %d", e.URL, e.StatusCode)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// SizeNotFoundError is returned when the instance page was fetched but
// carries no parseable variable count.
type SizeNotFoundError struct {
	Model string
	URL   string
}

func (e *SizeNotFoundError) Error() string {
	return fmt.Sprintf("cannot find the size for instance %q on MIPLIB", e.Model)
}

func (*PathExtractionError) autosizeError() {}
func (*EncodingError) autosizeError()       {}
func (*WrongFormatError) autosizeError()    {}
func (*TransportError) autosizeError()      {}
func (*RemoteLookupError) autosizeError()   {}
func (*SizeNotFoundError) autosizeError()   {}

// KindOf reports the category of err, looking through wrapping. It returns
// an empty Kind for a nil error and KindUnknown for errors outside the set.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var target Error
	if !errors.As(err, &target) {
		return KindUnknown
	}

	switch target.(type) {
	case *PathExtractionError:
		return KindPathExtraction
	case *EncodingError:
		return KindEncoding
	case *WrongFormatError:
		return KindWrongFormat
	case *TransportError:
		return KindTransport
	case *RemoteLookupError:
		return KindRemoteLookup
	case *SizeNotFoundError:
		return KindSizeNotFound
	}
	return KindUnknown
}
