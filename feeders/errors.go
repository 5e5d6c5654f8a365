package feeders

import (
	"errors"
	"fmt"
)

// Env feeder errors
var (
	ErrEnvInvalidStructure   = errors.New("env: invalid structure")
	ErrEnvFieldCannotBeSet   = errors.New("env: field cannot be set")
	ErrEnvConversionFailed   = errors.New("env: cannot convert value")
	ErrEnvUnsupportedPointer = errors.New("env: unsupported pointer field")
)

// File feeder errors
var (
	ErrFileRead        = errors.New("cannot read configuration file")
	ErrFileParse       = errors.New("cannot parse configuration file")
	ErrTargetNotPtr    = errors.New("target must be a non-nil pointer")
	ErrKeyRemarshal    = errors.New("cannot re-encode configuration key")
	ErrUnsupportedPath = errors.New("unsupported configuration file extension")
)

func wrapReadError(format, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrFileRead, format, path, err)
}

func wrapParseError(format, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrFileParse, format, path, err)
}
