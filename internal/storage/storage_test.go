package storage

import (
	"testing"

	"freelance_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table, err := Table(models.Client)
	require.NoError(t, err)
	assert.Equal(t, "clients_data", table)

	table, err = Table(models.Freelancer)
	require.NoError(t, err)
	assert.Equal(t, "freelance_users_data", table)

	_, err = Table("admin")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestSplitEmailList(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, SplitEmailList("a@x.com, b@x.com,"))
	assert.Equal(t, []string{}, SplitEmailList(""))
}
