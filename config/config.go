// Package config holds the database connection settings shared by the
// pool and the backend connectors.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind identifies a database backend
type Kind string

const (
	MySQL      Kind = "mysql"
	PostgreSQL Kind = "postgres"
	SQLite     Kind = "sqlite"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid database config")

// FieldError reports the config field that failed validation
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

// ParseKind maps a driver name to a backend. An empty name selects MySQL.
func ParseKind(driver string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", &FieldError{Field: "driver", Reason: fmt.Sprintf("%q is not supported", driver)}
}

// Config describes one database and the pool in front of it
type Config struct {
	Driver   string `json:"driver" yaml:"driver"`
	Hostname string `json:"hostname" yaml:"hostname"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	// DataName is the database (schema) name, or the file path for SQLite
	DataName string `json:"dataname" yaml:"dataname"`
	PoolSize int    `json:"poolsize" yaml:"poolsize"`

	// AcquireTimeout bounds how long Borrow waits for a returned connection, 0 waits forever
	AcquireTimeout Duration `json:"acquire_timeout,omitempty" yaml:"acquire_timeout,omitempty"`

	// MaxOpen caps opportunistic connection creation, 0 means no cap
	MaxOpen int `json:"max_open,omitempty" yaml:"max_open,omitempty"`
}

// Kind returns the backend selected by Driver
func (c Config) Kind() (Kind, error) {
	return ParseKind(c.Driver)
}

// Validate checks the fields required by the selected backend
func (c Config) Validate() error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}

	if kind != SQLite {
		switch {
		case c.Hostname == "":
			return &FieldError{Field: "hostname", Reason: "is empty"}
		case c.Username == "":
			return &FieldError{Field: "username", Reason: "is empty"}
		case c.Password == "":
			return &FieldError{Field: "password", Reason: "is empty"}
		case c.Port <= 0 || c.Port >= 65535:
			return &FieldError{Field: "port", Reason: fmt.Sprintf("%d is out of range", c.Port)}
		}
	}

	switch {
	case c.DataName == "":
		return &FieldError{Field: "dataname", Reason: "is empty"}
	case c.PoolSize <= 0:
		return &FieldError{Field: "poolsize", Reason: "must be positive"}
	case c.MaxOpen < 0:
		return &FieldError{Field: "max_open", Reason: "must not be negative"}
	case c.MaxOpen > 0 && c.MaxOpen < c.PoolSize:
		return &FieldError{Field: "max_open", Reason: "is smaller than poolsize"}
	case c.AcquireTimeout < 0:
		return &FieldError{Field: "acquire_timeout", Reason: "must not be negative"}
	}
	return nil
}

// Address returns host:port
func (c Config) Address() string {
	return c.Hostname + ":" + strconv.Itoa(c.Port)
}

// String hides the password
func (c Config) String() string {
	return fmt.Sprintf("%s://%s@%s/%s?poolsize=%d", c.Driver, c.Username, c.Address(), c.DataName, c.PoolSize)
}

// Duration accepts "1.5s" style strings or integer milliseconds
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value) * time.Millisecond)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return &FieldError{Field: "acquire_timeout", Reason: err.Error()}
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return &FieldError{Field: "acquire_timeout", Reason: fmt.Sprintf("unsupported value %v", value)}
	}
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var ms int64
		if err := node.Decode(&ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return &FieldError{Field: "acquire_timeout", Reason: err.Error()}
	}
	*d = Duration(parsed)
	return nil
}
