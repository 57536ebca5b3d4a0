package uorm

import (
	"errors"
	"fmt"

	"github.com/uorm/uorm/query"
)

var (
	// ErrPoolClosed is returned when borrowing from a closed pool
	ErrPoolClosed = errors.New("pool closed")
	// ErrMissingPrimaryKey record type has no primary key
	ErrMissingPrimaryKey = errors.New("primary key required")
	// ErrNoUpdatableColumns record type has only primary key columns
	ErrNoUpdatableColumns = errors.New("no updatable columns")
	// ErrUnsupportedType value has no SQL mapping
	ErrUnsupportedType = query.ErrUnsupportedType
)

// ConfigurationError reports an invalid or unreadable configuration
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectionError reports a failure to obtain a usable connection
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SqlError reports a failed statement
type SqlError struct {
	Op  string
	SQL string
	Err error
}

func (e *SqlError) Error() string {
	if e.SQL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v [%s]", e.Op, e.Err, e.SQL)
}

func (e *SqlError) Unwrap() error { return e.Err }

// MappingError reports a record type that cannot be mapped
type MappingError struct {
	Type string
	Err  error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %s: %v", e.Type, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err wraps a *ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsConnectionError reports whether err wraps a *ConnectionError
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsSqlError reports whether err wraps a *SqlError
func IsSqlError(err error) bool {
	var target *SqlError
	return errors.As(err, &target)
}

// IsMappingError reports whether err wraps a *MappingError
func IsMappingError(err error) bool {
	var target *MappingError
	return errors.As(err, &target)
}

// wrapError keeps uorm errors as they are and turns anything else into a
// *SqlError for op
func wrapError(op, sql string, err error) error {
	if err == nil {
		return nil
	}

	var (
		cfgErr  *ConfigurationError
		connErr *ConnectionError
		sqlErr  *SqlError
		mapErr  *MappingError
	)
	if errors.As(err, &cfgErr) || errors.As(err, &connErr) || errors.As(err, &sqlErr) || errors.As(err, &mapErr) {
		return err
	}
	return &SqlError{Op: op, SQL: sql, Err: err}
}
