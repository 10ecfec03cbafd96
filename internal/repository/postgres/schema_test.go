package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatementsUsePrefix(t *testing.T) {
	tables := NewTableNames("test_")

	for _, service := range []string{"auth", "project", "task"} {
		t.Run(service, func(t *testing.T) {
			stmts, err := schemaStatements(service, tables)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			for _, s := range stmts {
				assert.Contains(t, s, "test_")
			}

			drops, err := dropStatements(service, tables)
			require.NoError(t, err)
			assert.NotEmpty(t, drops)
		})
	}
}

func TestMembershipSchemaConstraints(t *testing.T) {
	stmts, err := schemaStatements("project", NewTableNames(""))
	require.NoError(t, err)

	members := stmts[1]
	assert.True(t, strings.Contains(members, "PRIMARY KEY (project_id, user_id)"))
	assert.Contains(t, members, "CHECK (role_id IN (1, 2, 3))")
	assert.Contains(t, members, "ON DELETE CASCADE")
}

func TestSchemaUnknownService(t *testing.T) {
	_, err := schemaStatements("billing", NewTableNames(""))
	assert.Error(t, err)
	_, err = dropStatements("billing", NewTableNames(""))
	assert.Error(t, err)
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")
	assert.Equal(t, "dev_project_members", tables.ProjectMembers)
	assert.Equal(t, "dev_refresh_tokens", tables.RefreshTokens)
}
