package biosql

// errors.go maps database failures to short coded hints printed next to
// the underlying error when the report cannot be produced.
//
//	DB001 - Connection refused: no server at host/port
//	DB002 - Authentication failed: bad user or password
//	DB003 - Unknown database: the named database does not exist
//	DB004 - Missing table: not a BioSQL schema, or no lineage table
//	DB005 - Missing column: BioSQL schema version mismatch
//	DB006 - Timeout: a statement or the connection attempt timed out
//	DB007 - Cancelled: interrupted by the user
//	ERR000 - Anything else; read the underlying error
//
// Postgres errors are classified by SQLSTATE. MySQL and SQLite errors are
// matched case-insensitively against message patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Hint is a coded explanation of a failure with a suggested action.
type Hint struct {
	Code    string
	Message string
	Action  string
}

func (h Hint) String() string {
	return fmt.Sprintf("%s (Code: %s). %s", h.Message, h.Code, h.Action)
}

var (
	hintRefused = Hint{
		Code:    "DB001",
		Message: "Unable to connect to database",
		Action:  "Check --host and --port and that the server is running",
	}
	hintAuth = Hint{
		Code:    "DB002",
		Message: "Database authentication failed",
		Action:  "Check --user and --password",
	}
	hintUnknownDB = Hint{
		Code:    "DB003",
		Message: "Database does not exist",
		Action:  "Check --database names an existing BioSQL database",
	}
	hintTable = Hint{
		Code:    "DB004",
		Message: "A required table is missing",
		Action:  "The database must use the BioSQL schema and provide a lineage table",
	}
	hintColumn = Hint{
		Code:    "DB005",
		Message: "A required column is missing",
		Action:  "Check the BioSQL schema version",
	}
	hintTimeout = Hint{
		Code:    "DB006",
		Message: "Operation timed out",
		Action:  "Lower QUERY_BATCH_SIZE or raise QUERY_TIMEOUT",
	}
	hintCancelled = Hint{
		Code:    "DB007",
		Message: "Operation was cancelled",
		Action:  "Run the report again",
	}
	hintDefault = Hint{
		Code:    "ERR000",
		Message: "An unexpected error occurred",
		Action:  "See the error above for details",
	}
)

var sqlStateHints = map[string]Hint{
	"28000": hintAuth,      // invalid_authorization_specification
	"28P01": hintAuth,      // invalid_password
	"3D000": hintUnknownDB, // invalid_catalog_name
	"42P01": hintTable,     // undefined_table
	"42703": hintColumn,    // undefined_column
	"57014": hintCancelled, // query_canceled
}

type errorPattern struct {
	pattern string
	hint    Hint
}

// Column patterns precede table patterns since some messages for a missing
// column also name its table.
var errorPatterns = []errorPattern{
	{"connection refused", hintRefused},
	{"no such host", hintRefused},
	{"access denied", hintAuth},
	{"password authentication failed", hintAuth},
	{"unknown database", hintUnknownDB},
	{"no such column", hintColumn},
	{"unknown column", hintColumn},
	{"no such table", hintTable},
	{"doesn't exist", hintTable},
	{"does not exist", hintTable},
	{"timeout", hintTimeout},
	{"timed out", hintTimeout},
}

// Explain returns the hint for err. A nil error yields the zero Hint.
func Explain(err error) Hint {
	if err == nil {
		return Hint{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if h, ok := sqlStateHints[pgErr.Code]; ok {
			return h
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hintTimeout
	case errors.Is(err, context.Canceled):
		return hintCancelled
	}

	msg := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(msg, ep.pattern) {
			return ep.hint
		}
	}

	return hintDefault
}

// IsKnown reports whether err maps to a specific hint rather than ERR000.
func IsKnown(err error) bool {
	return err != nil && Explain(err).Code != hintDefault.Code
}
