/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/buzzer/pkg/models"
)

func TestSplitSQLStatementsHandlesDollarQuotedBlocks(t *testing.T) {
	content := `
CREATE TABLE foo (id int);

DO $$
BEGIN
    RAISE NOTICE 'semi;colon';
END $$;

SELECT 1;
`

	statements := splitSQLStatements(content)
	require.Len(t, statements, 3)
	assert.True(t, strings.HasPrefix(statements[1], "DO"))
	assert.Equal(t, "SELECT 1", statements[2])
}

func TestSplitSQLStatementsIgnoresSemicolonsInQuotesAndComments(t *testing.T) {
	content := `
-- leading comment; with a semicolon
INSERT INTO logs(message) VALUES('hello;world');
/* block; comment */
DO $tag$
BEGIN
    PERFORM do_something('value;with;semicolons');
END $tag$;
UPDATE devices SET device_name = "x;y" WHERE device_id = $1;
`

	statements := splitSQLStatements(content)
	require.Len(t, statements, 3)
	assert.True(t, strings.HasPrefix(statements[0], "INSERT"))
	assert.NotContains(t, statements[0], "leading comment")
	assert.True(t, strings.HasPrefix(statements[1], "DO"))
	assert.True(t, strings.HasSuffix(statements[1], "$tag$"))
	assert.Equal(t, `UPDATE devices SET device_name = "x;y" WHERE device_id = $1`, statements[2])
}

func TestEmbeddedSchemaSplits(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/00001_buzzer_schema.up.sql")
	require.NoError(t, err)

	statements := splitSQLStatements(string(content))
	require.NotEmpty(t, statements)

	for _, stmt := range statements {
		assert.NotEmpty(t, strings.TrimSpace(stmt))
	}

	joined := strings.Join(statements, "\n")
	for _, table := range []string{"users", "groups", "group_members", "devices", "ring_sessions"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/00002_b.up.sql":   {Data: []byte("SELECT 2;")},
		"migrations/00001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"migrations/00001_a.down.sql": {Data: []byte("SELECT 0;")},
		"migrations/00003_c.up.sql":   {Data: []byte("SELECT 3;")},
	}

	names, err := pendingMigrations(fsys, map[string]struct{}{"00002": {}})
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_a.up.sql", "00003_c.up.sql"}, names)
	assert.Equal(t, "00003", migrationVersion("00003_c.up.sql"))
}

func TestBuildConnURL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    models.DatabaseConfig
		want   string
		errMsg string
	}{
		{
			name: "discrete fields",
			cfg: models.DatabaseConfig{
				Host: "pg", Port: 5433, Database: "buzzer", Username: "app", Password: "s3cret",
				ApplicationName: "buzzer",
			},
			want: "postgres://app:s3cret@pg:5433/buzzer?application_name=buzzer&sslmode=disable",
		},
		{
			name: "url keeps its own sslmode",
			cfg: models.DatabaseConfig{
				URL:             "postgresql://app@db.internal/buzzer?sslmode=require",
				ApplicationName: "buzzer",
			},
			want: "postgresql://app@db.internal/buzzer?application_name=buzzer&sslmode=require",
		},
		{
			name: "runtime params",
			cfg: models.DatabaseConfig{
				Host: "pg", Database: "buzzer",
				ExtraRuntimeParams: map[string]string{"search_path": "buzzer", "": "ignored"},
			},
			want: "postgres://pg:5432/buzzer?search_path=buzzer&sslmode=disable",
		},
		{
			name:   "bad scheme",
			cfg:    models.DatabaseConfig{URL: "mysql://db/buzzer"},
			errMsg: "unsupported scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildConnURL(&tt.cfg)
			if tt.errMsg != "" {
				require.ErrorIs(t, err, errDatabaseURLInvalid)
				assert.Contains(t, err.Error(), tt.errMsg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
