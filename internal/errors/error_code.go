package errors

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidInput         ErrorCode = 100
	ErrCodeInvalidRequest       ErrorCode = 101
	ErrCodeInvalidConfiguration ErrorCode = 102
	ErrCodeInsufficientData     ErrorCode = 103

	// Data/source errors (200-299)
	ErrCodeNoDataFound           ErrorCode = 200
	ErrCodeDataSourceFailed      ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
)

// String returns a short stable name, used as a metrics label.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidInput:
		return "invalid_input"
	case ErrCodeInvalidRequest:
		return "invalid_request"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeInsufficientData:
		return "insufficient_data"
	case ErrCodeNoDataFound:
		return "no_data_found"
	case ErrCodeDataSourceFailed:
		return "data_source_failed"
	case ErrCodeDataSourceUnavailable:
		return "data_source_unavailable"
	default:
		return "unknown"
	}
}
