// Package trigger holds the data model shared by the registry, the replicated
// store and the dispatcher: trigger definitions, selectors, parameter values,
// commit change summaries and the error taxonomy of lifecycle operations.
package trigger

import (
	"fmt"
	"strings"
	"time"
)

// SystemDatabase is the default identifier of the coordination database.
const SystemDatabase = "system"

const maxNameLen = 256

// Definition is one installed trigger.
type Definition struct {
	Database  string
	Name      string
	Statement string
	Selector  Selector
	Params    Params
	Paused    bool
	// InstalledAt is stamped by the leader so every replica stores the same value.
	InstalledAt time.Time
}

// Info is the descriptor returned by lifecycle operations.
type Info struct {
	Name        string         `json:"name"`
	Database    string         `json:"database"`
	Statement   string         `json:"statement"`
	Selector    Selector       `json:"selector"`
	Params      map[string]any `json:"params"`
	Paused      bool           `json:"paused"`
	InstalledAt *time.Time     `json:"installedAt,omitempty"`
}

// Info converts the definition to its public descriptor.
func (d Definition) Info() Info {
	info := Info{
		Name:      d.Name,
		Database:  d.Database,
		Statement: d.Statement,
		Selector:  d.Selector,
		Params:    d.Params.Any(),
		Paused:    d.Paused,
	}
	if !d.InstalledAt.IsZero() {
		at := d.InstalledAt.UTC()
		info.InstalledAt = &at
	}
	return info
}

// Infos converts a slice of definitions, preserving order.
func Infos(defs []Definition) []Info {
	out := make([]Info, len(defs))
	for i, d := range defs {
		out[i] = d.Info()
	}
	return out
}

// ValidateName checks a trigger name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("trigger name must not be empty")
	case len(name) > maxNameLen:
		return fmt.Errorf("trigger name longer than %d bytes", maxNameLen)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("trigger name contains a NUL byte")
	}
	return nil
}

// ValidateDatabase checks a database identifier.
func ValidateDatabase(db string) error {
	if strings.TrimSpace(db) == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if strings.ContainsRune(db, 0) {
		return fmt.Errorf("database name contains a NUL byte")
	}
	return nil
}
