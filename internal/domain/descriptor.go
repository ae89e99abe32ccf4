package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Driver identifies one supported database engine type.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverMariaDB  Driver = "mariadb"
	DriverPostgres Driver = "postgres"
)

// IsServer reports whether the driver is a client-server engine
// (as opposed to the embedded file engine).
func (d Driver) IsServer() bool {
	switch d {
	case DriverMySQL, DriverMariaDB, DriverPostgres:
		return true
	}
	return false
}

// Known reports whether the driver is one of the supported engine types.
func (d Driver) Known() bool {
	return d == DriverSQLite || d.IsServer()
}

// Display returns the engine's conventional display name.
func (d Driver) Display() string {
	switch d {
	case DriverSQLite:
		return "SQLite"
	case DriverMySQL:
		return "MySQL"
	case DriverMariaDB:
		return "MariaDB"
	case DriverPostgres:
		return "PostgreSQL"
	}
	return string(d)
}

// Port holds a TCP port that configuration files may write as either a JSON
// string or a JSON number.
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Port(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("port must be a string or number: %s", string(data))
	}
	*p = Port(n.String())
	return nil
}

// Int returns the port as an integer, or def when unset/unparsable.
func (p Port) Int(def int) int {
	if p == "" {
		return def
	}
	n, err := strconv.Atoi(string(p))
	if err != nil {
		return def
	}
	return n
}

// ConnectionDescriptor is the unvalidated, declarative description of one
// candidate database connection. The Type tag selects the variant: the sqlite
// variant uses Path only, the server variants share host/port/credentials.
// The descriptor carries exactly what is needed to construct an engine; it
// performs no I/O itself.
type ConnectionDescriptor struct {
	Type     Driver `json:"type"`
	Name     string `json:"name,omitempty"`
	Path     string `json:"path,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     Port   `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
}

// Identity returns the stable cache identity for the descriptor: the file
// path for the sqlite variant, the user-assigned name for server variants.
func (c ConnectionDescriptor) Identity() string {
	if c.Type == DriverSQLite {
		return c.Path
	}
	return c.Name
}

// Label returns a short human-readable description for connection pickers.
func (c ConnectionDescriptor) Label() string {
	if c.Type == DriverSQLite {
		return "SQLite: " + c.Path
	}
	return fmt.Sprintf("%s: %s@%s", c.Type.Display(), c.Database, c.Host)
}

// ParseDescriptorList parses the declarative configuration artifact: a single
// JSON list of connection descriptor objects. A payload that is not a list
// returns an error; callers treat that the same as an absent artifact.
func ParseDescriptorList(data []byte) ([]ConnectionDescriptor, error) {
	var list []ConnectionDescriptor
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse descriptor list: %w", err)
	}
	return list, nil
}
