package errors

import (
	"fmt"
)

type ErrorCode int

const (
	InternalError ErrorCode = iota
	InvalidConfiguration
	InvalidSchema
	UnknownSchema

	// Row writer result codes.
	UnknownField
	TypeMismatch
	OutOfRange
	NotNullable
	FieldUnset
	IncorrectValue
)

var codeNames = map[ErrorCode]string{
	InternalError:        "InternalError",
	InvalidConfiguration: "InvalidConfiguration",
	InvalidSchema:        "InvalidSchema",
	UnknownSchema:        "UnknownSchema",
	UnknownField:         "UnknownField",
	TypeMismatch:         "TypeMismatch",
	OutOfRange:           "OutOfRange",
	NotNullable:          "NotNullable",
	FieldUnset:           "FieldUnset",
	IncorrectValue:       "IncorrectValue",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

func NewInternalError(ref string) RowError {
	return NewRowErrorf(InternalError, "Internal error - reference %s please consult the logs for details", ref)
}

func NewInvalidConfigurationError(msg string) RowError {
	return NewRowErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

func NewInvalidSchemaError(msg string) RowError {
	return NewRowErrorf(InvalidSchema, "Invalid schema: %s", msg)
}

func NewUnknownSchemaError(kind string, space int32, id int32, ver int64) RowError {
	return NewRowErrorf(UnknownSchema, "Unknown %s schema: space %d, id %d, version %d", kind, space, id, ver)
}

func NewUnknownFieldError(field string) RowError {
	return NewRowErrorf(UnknownField, "Unknown field %s", field)
}

func NewTypeMismatchError(field string, fieldType string, valueType string) RowError {
	return NewRowErrorf(TypeMismatch, "Field %s of type %s cannot hold a value of type %s", field, fieldType, valueType)
}

func NewOutOfRangeError(field string, fieldType string, v interface{}) RowError {
	return NewRowErrorf(OutOfRange, "Value %v is out of range for field %s of type %s", v, field, fieldType)
}

func NewNotNullableError(field string) RowError {
	return NewRowErrorf(NotNullable, "Field %s is not nullable", field)
}

func NewFieldUnsetError(field string) RowError {
	return NewRowErrorf(FieldUnset, "Field %s is not set and has neither a default value nor is nullable", field)
}

func NewIncorrectValueError(field string, msg string) RowError {
	return NewRowErrorf(IncorrectValue, "Incorrect value for field %s: %s", field, msg)
}

func NewRowErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) RowError {
	msg := fmt.Sprintf(fmt.Sprintf("RCD%04d - %s", errorCode, msgFormat), args...)
	return RowError{Code: errorCode, Msg: msg}
}

func NewRowError(errorCode ErrorCode, msg string) RowError {
	return RowError{Code: errorCode, Msg: msg}
}

// RowError is an error with a stable code that callers are expected to branch on.
type RowError struct {
	Code ErrorCode
	Msg  string
}

func (r RowError) Error() string {
	return r.Msg
}

// CodeOf returns the code of the first RowError in err's chain. ok is false if there is none.
func CodeOf(err error) (code ErrorCode, ok bool) {
	var re RowError
	if As(err, &re) {
		return re.Code, true
	}
	return InternalError, false
}

// HasCode reports whether err carries a RowError with the given code.
func HasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// MaybeAddStack adds a stack trace to anything that is not already a RowError.
func MaybeAddStack(err error) error {
	if _, ok := err.(RowError); !ok {
		return WithStack(err)
	}
	return err
}
