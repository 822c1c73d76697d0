package projection

import "errors"

// Sentinel errors raised synchronously to the caller. Computation is pure, so
// none of these are retried internally.
var (
	// ErrProjectNotFound indicates the requested project does not exist in
	// the backing source.
	ErrProjectNotFound = errors.New("project not found")

	// ErrLoanNotFound indicates a referenced loan record is absent.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrUnsupportedConfiguration indicates a loan or deal configuration the
	// engine deliberately does not implement, such as takeout chaining.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrInvalidAnalysisType indicates the project's analysis type could not
	// be resolved.
	ErrInvalidAnalysisType = errors.New("invalid analysis type")
)
