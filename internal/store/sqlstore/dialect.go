package sqlstore

import (
	"fmt"
	"strings"
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	name string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// like is the case-insensitive pattern operator and escape the clause
	// that makes backslash its escape character.
	like   string
	escape string
	// lock is appended to selects that must lock the rows they read.
	lock string
	// now is the expression for the current timestamp.
	now string
	// numeric wraps a decimal column or parameter for comparison.
	numeric func(expr string) string
	// classify maps engine errors to core errors. It returns nil for errors it
	// does not recognise.
	classify func(op string, err error) error
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	like:        "ILIKE",
	lock:        " FOR UPDATE",
	now:         "now()",
	numeric:     func(expr string) string { return expr },
	classify:    classifyPostgres,
}

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: func(int) string { return "?" },
	like:        "LIKE",
	escape:      ` ESCAPE '\'`,
	lock:        "",
	now:         "CURRENT_TIMESTAMP",
	numeric:     func(expr string) string { return "CAST(" + expr + " AS REAL)" },
	classify:    classifySQLite,
}

// binder collects bind arguments in the order their placeholders appear.
type binder struct {
	d    *dialect
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with the
// wildcard characters in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
