package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures (DNS, timeout, non-2xx status)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a source that asked us to back off
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents a page whose code table layout is not the expected one
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeState represents persisted state read/write errors
	ErrorTypeState ErrorType = "state"
	// ErrorTypePublisher represents notifier errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CheckError represents an error raised during a promo code check
type CheckError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CheckError) Error() string {
	if e.Source == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *CheckError) Unwrap() error {
	return e.Err
}

// New creates a new CheckError
func New(errType ErrorType, source, message string, err error) *CheckError {
	return &CheckError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *CheckError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *CheckError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *CheckError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewState creates a new state error
func NewState(message string, err error) *CheckError {
	return New(ErrorTypeState, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *CheckError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CheckError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the type of the first CheckError in err's chain, or "" if there is none
func TypeOf(err error) ErrorType {
	var ce *CheckError
	if stderrors.As(err, &ce) {
		return ce.Type
	}
	return ""
}

// IsParsing reports whether err is a structural parse failure
func IsParsing(err error) bool {
	return TypeOf(err) == ErrorTypeParsing
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return TypeOf(err) == ErrorTypeNetwork
}

// IsRateLimit reports whether err is a rate limit
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}
