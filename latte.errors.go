package latte

import (
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
	"github.com/lattetex/latte/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Parse errors
	ErrMsgParseFailed     = "template parsing failed"
	ErrMsgEmptySource     = "template source cannot be empty"
	ErrMsgInvalidTemplate = "invalid template"

	// Render errors
	ErrMsgRenderFailed      = "template rendering failed"
	ErrMsgVariableUndefined = "undefined variable"
	ErrMsgRecursionLimit    = "component nesting exceeded the depth ceiling"
	ErrMsgFormatFailed      = "filter could not format value"

	// Component errors
	ErrMsgComponentNotFound = "component not found"
	ErrMsgComponentExists   = "component already registered"
	ErrMsgComponentName     = "component name cannot be empty"
	ErrMsgComponentSource   = "component source cannot be empty"

	// Storage errors
	ErrMsgStorageFailed   = "component storage operation failed"
	ErrMsgStoreClosed     = "component store is closed"
	ErrMsgUnknownDriver   = "unknown component store driver"
	ErrMsgDriverExists    = "component store driver already registered"

	// Boundary errors
	ErrMsgDataDecodeFailed  = "data decoding failed"
	ErrMsgFileReadFailed    = "file read failed"
	ErrMsgFileWriteFailed   = "file write failed"
	ErrMsgConfigLoadFailed  = "configuration load failed"
	ErrMsgTemplateNameEmpty = "template name cannot be empty"
	ErrMsgTemplateNotFound  = "template not found"
	ErrMsgTemplateExists    = "template already registered"
)

// KnownNamesSeparator joins component names in error metadata.
const KnownNamesSeparator = ", "

// Position is a location in template source, re-exported for callers that
// inspect error metadata.
type Position = internal.Position

// NewParseError creates a parse error with position context.
func NewParseError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, msg)
	}
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// NewRenderError creates a generic render error.
func NewRenderError(msg string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRender, msg)
}

// NewUndefinedVariableError creates a strict-mode undefined variable error.
func NewUndefinedVariableError(path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgVariableUndefined)
	} else {
		err = cuserr.NewValidationError(ErrCodeRender, ErrMsgVariableUndefined)
	}
	return err.WithMetadata(MetaKeyPath, path)
}

// NewComponentNotFoundError creates an unknown component error carrying the
// sorted list of registered names.
func NewComponentNotFoundError(name string, known []string) error {
	return cuserr.NewNotFoundError(MetaKeyComponent, ErrMsgComponentNotFound).
		WithMetadata(MetaKeyComponent, name).
		WithMetadata(MetaKeyKnown, strings.Join(known, KnownNamesSeparator))
}

// NewComponentExistsError creates a duplicate component registration error.
func NewComponentExistsError(name string) error {
	return cuserr.NewValidationError(ErrCodeComponent, ErrMsgComponentExists).
		WithMetadata(MetaKeyComponent, name)
}

// NewEmptyComponentNameError creates an empty component name error.
func NewEmptyComponentNameError() error {
	return cuserr.NewValidationError(ErrCodeComponent, ErrMsgComponentName)
}

// NewFormatError creates a filter formatting error.
func NewFormatError(filter string, value string, expected string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeFilter, ErrMsgFormatFailed)
	} else {
		err = cuserr.NewValidationError(ErrCodeFilter, ErrMsgFormatFailed)
	}
	return err.
		WithMetadata(MetaKeyFilter, filter).
		WithMetadata(MetaKeyValue, value).
		WithMetadata(MetaKeyExpected, expected)
}

// NewRecursionError creates a depth ceiling error.
func NewRecursionError(limit int, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgRecursionLimit)
	} else {
		err = cuserr.NewValidationError(ErrCodeRender, ErrMsgRecursionLimit)
	}
	return err.WithMetadata(MetaKeyLimit, strconv.Itoa(limit))
}

// NewStoreComponentNotFoundError creates a store-level unknown component
// error. Unlike NewComponentNotFoundError it carries no known-names list,
// since listing may itself require a round trip.
func NewStoreComponentNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyComponent, ErrMsgComponentNotFound).
		WithMetadata(MetaKeyComponent, name)
}

// NewStoreClosedError creates an error for operations on a closed store.
func NewStoreClosedError() error {
	return cuserr.NewValidationError(ErrCodeStorage, ErrMsgStoreClosed)
}

// NewStorageError creates a component storage error.
func NewStorageError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeStorage, ErrMsgStorageFailed)
}

// NewUnknownDriverError creates an unknown store driver error.
func NewUnknownDriverError(driver string) error {
	return cuserr.NewNotFoundError(MetaKeyDriver, ErrMsgUnknownDriver).
		WithMetadata(MetaKeyDriver, driver)
}

// NewDataDecodeError creates a data decoding error.
func NewDataDecodeError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeValidation, ErrMsgDataDecodeFailed)
}

// NewFileReadError creates a file read error.
func NewFileReadError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeValidation, ErrMsgFileReadFailed).
		WithMetadata(MetaKeyFile, path)
}

// NewFileWriteError creates a file write error.
func NewFileWriteError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeValidation, ErrMsgFileWriteFailed).
		WithMetadata(MetaKeyFile, path)
}

// NewConfigError creates a configuration load error.
func NewConfigError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeConfig, ErrMsgConfigLoadFailed).
		WithMetadata(MetaKeyFile, path)
}

// NewTemplateNotFoundError creates an unknown named template error.
func NewTemplateNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyTemplate, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplate, name)
}

// NewEmptyTemplateNameError creates an empty template name error.
func NewEmptyTemplateNameError() error {
	return cuserr.NewValidationError(ErrCodeValidation, ErrMsgTemplateNameEmpty)
}
