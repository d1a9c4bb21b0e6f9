// Package store implements core.RecordStore on Postgres, SQLite and memory.
//
// Every canonical field is a nullable TEXT column named after the field key.
// ticket_number carries a unique index; blank ticket numbers are stored as
// NULL so they never conflict with each other.
package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// DefaultTable is the table name used when none is configured.
const DefaultTable = "tickets"

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// validateTable rejects names that are not plain SQL identifiers.
func validateTable(name string) (string, error) {
	if name == "" {
		return DefaultTable, nil
	}
	if !tableNameRegex.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return name, nil
}

// columns returns the field keys in display order.
func columns() []string {
	fields := core.Fields()
	cols := make([]string, len(fields))
	for i, fi := range fields {
		cols[i] = string(fi.Field)
	}
	return cols
}

// recordArgs returns one value per column: the trimmed text, or nil for empty.
func recordArgs(rec core.Record) []any {
	fields := core.Fields()
	args := make([]any, len(fields))
	for i, fi := range fields {
		c := rec.Get(fi.Field)
		if c.IsEmpty() {
			continue
		}
		v := c.String()
		if fi.Field == core.ConflictKey {
			v = strings.TrimSpace(v)
		}
		args[i] = v
	}
	return args
}

// recordFromNullable builds a record from scanned column values.
func recordFromNullable(values []*string) core.Record {
	fields := core.Fields()
	rec := make(core.Record, len(fields))
	for i, fi := range fields {
		if values[i] == nil || *values[i] == "" {
			rec[fi.Field] = core.Cell{}
			continue
		}
		rec[fi.Field] = core.Text(*values[i])
	}
	return rec
}

// upsertSQL builds an INSERT ... ON CONFLICT (ticket_number) DO UPDATE
// statement. placeholder renders the n-th (1-based) bind parameter.
func upsertSQL(table string, placeholder func(n int) string) string {
	cols := columns()
	binds := make([]string, len(cols))
	sets := make([]string, 0, len(cols))
	for i, c := range cols {
		binds[i] = placeholder(i + 1)
		if c != string(core.ConflictKey) {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s, updated_at = CURRENT_TIMESTAMP",
		table,
		strings.Join(cols, ", "),
		strings.Join(binds, ", "),
		core.ConflictKey,
		strings.Join(sets, ", "),
	)
}

// selectSQL reads every column in insertion order.
func selectSQL(table string) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(columns(), ", "), table)
}

// columnDDL renders the field columns for CREATE TABLE.
func columnDDL() string {
	cols := columns()
	defs := make([]string, len(cols))
	for i, c := range cols {
		def := c + " TEXT"
		if c == string(core.ConflictKey) {
			def += " UNIQUE"
		}
		defs[i] = def
	}
	return strings.Join(defs, ",\n  ")
}
