package edgarseg

import (
	"errors"
	"fmt"
)

// Application error codes. These are portable across the wire and stable;
// callers branch on them rather than on message text.
const (
	ECONTAINER = "container" // container format unusable (no recognizable header)
	EEMPTY     = "empty"     // section located but no usable content survived filtering
	EINTERNAL  = "internal"  // unexpected internal error
	EINVALID   = "invalid"   // invalid input (unknown form, unknown section id, bad argument)
	ENOTFOUND  = "not_found" // requested section absent from the filing
)

// Pipeline stage names. Every failure is tagged with the stage it occurred
// at; the stage boundaries are also the engine's coarse cancellation points.
const (
	StageManifest = "manifest"
	StageDecode   = "decode"
	StagePreseek  = "preseek"
	StageParse    = "parse"
	StageLocate   = "locate"
	StageCollect  = "collect"
	StageSegment  = "segment"
	StageStore    = "store"
)

// Error represents an application-specific error. Errors can be unwrapped by
// the caller to extract the code, the filing it concerns, and the pipeline
// stage that produced it.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description.
	Message string

	// Filing is the accession number of the filing being processed,
	// when known.
	Filing string

	// Stage is the pipeline stage that produced the error, when known.
	Stage string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b []byte
	b = fmt.Appendf(b, "edgarseg error: code=%s", e.Code)
	if e.Filing != "" {
		b = fmt.Appendf(b, " filing=%s", e.Filing)
	}
	if e.Stage != "" {
		b = fmt.Appendf(b, " stage=%s", e.Stage)
	}
	b = fmt.Appendf(b, " message=%s", e.Message)
	return string(b)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStage unwraps an application error and returns the pipeline stage it
// occurred at, or an empty string when unknown.
func ErrorStage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// StageErrorf is like Errorf but additionally tags the error with the filing
// accession number and pipeline stage.
func StageErrorf(stage, filing, code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Filing:  filing,
		Stage:   stage,
	}
}
