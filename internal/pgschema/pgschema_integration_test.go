package pgschema

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-data/fieldscope"
	"github.com/chimera-data/fieldscope/internal/testutil"
)

func TestApply_CreatesTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	tc := testutil.MustStartPostgres()
	defer tc.Terminate()

	ctx := context.Background()
	rec := fieldscope.SchemaRecommendation{
		Fields: []fieldscope.SchemaField{
			{Path: "op", Column: "op", Type: fieldscope.StorageString, Mode: fieldscope.ModeRequired},
			{Path: "mc[].rc[].ltp", Column: "mc_rc_ltp", Type: fieldscope.StorageFloat, Mode: fieldscope.ModeRepeated},
		},
	}

	require.NoError(t, Apply(ctx, tc.DSN, "market_stream", rec))
	// Re-applying must be a no-op, not an error.
	require.NoError(t, Apply(ctx, tc.DSN, "market_stream", rec))

	pool, err := pgxpool.New(ctx, tc.DSN)
	require.NoError(t, err)
	defer pool.Close()

	rows, err := pool.Query(ctx,
		`SELECT column_name, data_type, is_nullable
		 FROM information_schema.columns WHERE table_name = 'market_stream'
		 ORDER BY ordinal_position`)
	require.NoError(t, err)
	defer rows.Close()

	type col struct{ name, typ, nullable string }
	var cols []col
	for rows.Next() {
		var c col
		require.NoError(t, rows.Scan(&c.name, &c.typ, &c.nullable))
		cols = append(cols, c)
	}
	require.NoError(t, rows.Err())

	require.Len(t, cols, 2)
	assert.Equal(t, col{"op", "text", "NO"}, cols[0])
	assert.Equal(t, col{"mc_rc_ltp", "jsonb", "YES"}, cols[1])
}
