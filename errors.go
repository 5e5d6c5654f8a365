package voiper

import (
	"errors"
	"fmt"
)

// Wiring faults. These are never returned; the factory panics with a *WiringError wrapping one
// of them because they indicate a module that was declared incorrectly.
var (
	ErrNarrowingFailed       = errors.New("role handle does not satisfy the declared type")
	ErrRoleNotLinked         = errors.New("role handle accessed before it was linked")
	ErrParentControlMismatch = errors.New("presenter does not implement its declared parent-controllable type")
	ErrConfigurationMissing  = errors.New("configuration omitted for a role whose configuration is not Unit")
	ErrConstructionFailed    = errors.New("role construction failed")
	ErrNilRole               = errors.New("role constructor returned nil")
)

// Resource lookup faults raised by named-resource instantiation.
var (
	ErrBundleNotFound      = errors.New("bundle not found")
	ErrIdentifierNotFound  = errors.New("identifier not found in bundle")
	ErrSurfaceTypeMismatch = errors.New("bundle entry produced a surface of the wrong type")
	ErrNilRegistry         = errors.New("bundle registry is nil")
)

// Bundle registry and manifest errors
var (
	ErrSurfaceTypeNotRegistered  = errors.New("surface type not registered")
	ErrSurfaceTypeAlreadyExists  = errors.New("surface type already registered")
	ErrIdentifierAlreadyBound    = errors.New("identifier already bound in bundle")
	ErrEmptyBundleName           = errors.New("bundle name is empty")
	ErrEmptyIdentifier           = errors.New("identifier is empty")
	ErrNilSurfaceFactory         = errors.New("surface factory is nil")
	ErrUnsupportedManifestFormat = errors.New("unsupported manifest format")
	ErrManifestInvalid           = errors.New("manifest is invalid")
	ErrWatcherAlreadyRunning     = errors.New("manifest watcher is already running")
)

// Catalog and configuration errors
var (
	ErrModuleAlreadyCataloged = errors.New("module already cataloged")
	ErrModuleNotCataloged     = errors.New("module not cataloged")
	ErrModuleNameEmpty        = errors.New("module name is empty")
	ErrConfigTargetNil        = errors.New("configuration target is nil")
	ErrConfigFeederFailed     = errors.New("configuration feeder failed")
)

// WiringError describes a fatal module-construction fault. It is the value passed to panic by
// the factory and by the forced-narrowing accessors.
type WiringError struct {
	Module string
	Role   string
	Want   string
	Got    string
	Err    error
}

func (e *WiringError) Error() string {
	msg := e.Err.Error()
	if e.Role != "" {
		msg = fmt.Sprintf("%s: %s", e.Role, msg)
	}
	if e.Want != "" || e.Got != "" {
		msg = fmt.Sprintf("%s (want %s, got %s)", msg, e.Want, e.Got)
	}
	if e.Module != "" {
		msg = fmt.Sprintf("module %q: %s", e.Module, msg)
	}
	return msg
}

func (e *WiringError) Unwrap() error {
	return e.Err
}

// fault panics with a WiringError. It never returns.
func fault(module, role string, err error, want, got string) {
	panic(&WiringError{Module: module, Role: role, Want: want, Got: got, Err: err})
}
