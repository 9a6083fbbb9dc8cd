package scenario

import "errors"

// Recoverable parse errors: textual-syntax failures are reported to the
// caller, never silently dropped or defaulted.
var (
	ErrParseBlueprint         = errors.New("scenario: invalid vehicle blueprint syntax")
	ErrParseCellLocation      = errors.New("scenario: invalid cell location syntax")
	ErrParseCellLocationRange = errors.New("scenario: invalid cell location range syntax")
)
