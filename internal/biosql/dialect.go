package biosql

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	Name string

	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool

	// ConcatFunc uses CONCAT(a, b) instead of a || b.
	ConcatFunc bool

	// DefaultPort is used when no port is configured; 0 for file databases.
	DefaultPort int
}

var (
	Postgres = Dialect{Name: "postgres", Numbered: true, DefaultPort: 5432}
	MySQL    = Dialect{Name: "mysql", ConcatFunc: true, DefaultPort: 3306}
	SQLite   = Dialect{Name: "sqlite"}
)

// DialectFor returns the dialect for a canonical driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Name:
		return Postgres, nil
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Placeholders returns a comma separated list of n bind parameters.
func (d Dialect) Placeholders(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if d.Numbered {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i + 1))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Concat returns an expression joining the given SQL expressions.
func (d Dialect) Concat(exprs ...string) string {
	if d.ConcatFunc {
		return "CONCAT(" + strings.Join(exprs, ", ") + ")"
	}
	return strings.Join(exprs, " || ")
}
