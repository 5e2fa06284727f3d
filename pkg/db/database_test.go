package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	assert.Equal(t, "sqlite", Dialector("sqlite://:memory:").Name())
	assert.Equal(t, "postgres", Dialector("postgres://u:p@localhost:5432/db").Name())
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestOpen_SQLiteMemory(t *testing.T) {
	gdb, err := Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), gdb))
	require.NoError(t, Close(gdb))
}
