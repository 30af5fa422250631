package config

import (
	"errors"
	"fmt"

	"github.com/dshills/mindstorm/internal/config/loader"
)

// ErrInvalidConfig matches every decoding and validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ParseError reports a settings file that is not valid TOML.
type ParseError = loader.ParseError

// ValidationError describes a setting with an unacceptable value.
type ValidationError struct {
	// Path is the dotted setting path, such as "layout.hGap".
	Path string
	// Message describes the problem.
	Message string
	// Value is the rejected value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is makes every ValidationError match ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
