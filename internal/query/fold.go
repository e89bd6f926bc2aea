package query

import (
	"database/sql/driver"

	sqlitedrv "github.com/glebarez/go-sqlite"
	"golang.org/x/text/cases"
)

// FoldFunc is the SQL function the SQLite driver exposes for Unicode case
// folding. SQLite's own LOWER only maps ASCII letters.
const FoldFunc = "casefold"

var folder = cases.Fold()

// Fold applies full Unicode case folding, the same mapping FoldFunc applies
// inside SQLite.
func Fold(s string) string { return folder.String(s) }

func init() {
	sqlitedrv.MustRegisterDeterministicScalarFunction(FoldFunc, 1, foldValue)
}

func foldValue(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return Fold(v), nil
	case []byte:
		return Fold(string(v)), nil
	default:
		return v, nil
	}
}
