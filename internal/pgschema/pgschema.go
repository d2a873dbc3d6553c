// Package pgschema turns a derived schema recommendation into Postgres DDL
// and applies it to a target database.
package pgschema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chimera-data/fieldscope"
)

// Map of derived storage types to Postgres column types. Repeated fields
// override this and land in jsonb regardless of element type.
var pgTypeMap = map[fieldscope.StorageType]string{
	fieldscope.StorageInteger: "bigint",
	fieldscope.StorageFloat:   "double precision",
	fieldscope.StorageBoolean: "boolean",
	fieldscope.StorageString:  "text",
	fieldscope.StorageRecord:  "jsonb",
}

// DDL renders a CREATE TABLE statement for the recommended schema. Column
// names arrive pre-sanitized; quoting guards the few that collide with
// keywords.
func DDL(table string, rec fieldscope.SchemaRecommendation) (string, error) {
	if table == "" {
		return "", errors.New("pgschema: table name required")
	}
	if len(rec.Fields) == 0 {
		return "", errors.New("pgschema: recommendation has no fields")
	}

	cols := make([]string, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		cols = append(cols, columnDef(f))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "create table if not exists %q (\n", table)
	b.WriteString("\t" + strings.Join(cols, ",\n\t"))
	b.WriteString("\n)")
	return b.String(), nil
}

func columnDef(f fieldscope.SchemaField) string {
	typ := pgTypeMap[f.Type]
	if typ == "" {
		typ = "text"
	}
	if f.Mode == fieldscope.ModeRepeated {
		typ = "jsonb"
	}

	def := fmt.Sprintf("%q %s", f.Column, typ)
	if f.Mode == fieldscope.ModeRequired {
		def += " not null"
	}
	return def
}

// Apply creates the recommended table in the database at databaseURL.
func Apply(ctx context.Context, databaseURL, table string, rec fieldscope.SchemaRecommendation) error {
	ddl, err := DDL(table, rec)
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("pgschema: connect: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgschema: create table %s: %w", table, err)
	}
	return nil
}
