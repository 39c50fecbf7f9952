// Package perr defines the closed error taxonomy shared across pkgcraft: a
// small set of exported, matchable error kinds rather than bare
// fmt.Errorf-wrapped strings. Every kind except ConfigMissing and NotARepo
// can carry an inner cause (possibly nil) exposed through Unwrap, so
// errors.Is/errors.As keep working across the taxonomy boundary;
// ConfigMissing and NotARepo carry no cause.
package perr

import "fmt"

// InvalidValue reports malformed input: a bad version, atom, dependency
// expression, cache entry, or a feature unsupported by the given EAPI.
type InvalidValue struct {
	Msg string
	Err error
}

func (e *InvalidValue) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid value: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid value: %s", e.Msg)
}

func (e *InvalidValue) Unwrap() error { return e.Err }

// NewInvalidValue builds an InvalidValue from a format string.
func NewInvalidValue(format string, args ...any) error {
	return &InvalidValue{Msg: fmt.Sprintf(format, args...)}
}

// WrapInvalidValue builds an InvalidValue that carries an underlying cause.
func WrapInvalidValue(err error, format string, args ...any) error {
	return &InvalidValue{Msg: fmt.Sprintf(format, args...), Err: err}
}

// InvalidRepo reports a declared repo that is structurally unusable --
// missing masters, malformed profile files.
type InvalidRepo struct {
	ID     string
	Reason string
	Err    error
}

func (e *InvalidRepo) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid repo %q: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid repo %q: %s", e.ID, e.Reason)
}

func (e *InvalidRepo) Unwrap() error { return e.Err }

func NewInvalidRepo(id, reason string) error {
	return &InvalidRepo{ID: id, Reason: reason}
}

func WrapInvalidRepo(err error, id, reason string) error {
	return &InvalidRepo{ID: id, Reason: reason, Err: err}
}

// ConfigMissing reports a required configuration input that is absent.
// Soft error: callers may fall back to a default.
type ConfigMissing struct{ Msg string }

func (e *ConfigMissing) Error() string { return fmt.Sprintf("config missing: %s", e.Msg) }

func NewConfigMissing(format string, args ...any) error {
	return &ConfigMissing{Msg: fmt.Sprintf(format, args...)}
}

// Config reports configuration that exists but is malformed.
type Config struct {
	Msg string
	Err error
}

func (e *Config) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Msg)
}

func (e *Config) Unwrap() error { return e.Err }

func NewConfig(format string, args ...any) error {
	return &Config{Msg: fmt.Sprintf(format, args...)}
}

func WrapConfig(err error, format string, args ...any) error {
	return &Config{Msg: fmt.Sprintf(format, args...), Err: err}
}

// IO reports a filesystem failure; the underlying OS error text is kept.
type IO struct {
	Msg string
	Err error
}

func (e *IO) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("io: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("io: %s", e.Msg)
}

func (e *IO) Unwrap() error { return e.Err }

func WrapIO(err error, format string, args ...any) error {
	return &IO{Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotARepo reports a path that exists but isn't a repo of the expected
// format.
type NotARepo struct {
	Path   string
	Reason string
}

func (e *NotARepo) Error() string {
	return fmt.Sprintf("not a repo %q: %s", e.Path, e.Reason)
}

func NewNotARepo(path, reason string) error {
	return &NotARepo{Path: path, Reason: reason}
}

// Base is an interpreter-layer error bubbled up unchanged.
type Base struct {
	Msg string
	Err error
}

func (e *Base) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Base) Unwrap() error { return e.Err }

func WrapBase(err error, format string, args ...any) error {
	return &Base{Msg: fmt.Sprintf(format, args...), Err: err}
}

// Bail is a fatal, non-recoverable interpreter abort (from `die` et al.).
// Any Bail aborts the current shell-driven operation.
type Bail struct {
	Msg string
	Err error
}

func (e *Bail) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bail: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("bail: %s", e.Msg)
}

func (e *Bail) Unwrap() error { return e.Err }

func NewBail(format string, args ...any) error {
	return &Bail{Msg: fmt.Sprintf(format, args...)}
}
