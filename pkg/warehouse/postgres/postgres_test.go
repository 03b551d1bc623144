package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/leapstack-labs/drift/pkg/warehouse"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.SourceConfig
		expected string
	}{
		{
			name: "basic connection",
			config: core.SourceConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.SourceConfig{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: core.SourceConfig{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: core.SourceConfig{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildPostgresDSN(tt.config)
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestPostgresSource_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, src *Source) error
		errMsg    string
	}{
		{
			name: "fetch without connect",
			operation: func(ctx context.Context, src *Source) error {
				_, err := src.Fetch(ctx, core.DatasetRef{Table: core.TableRef{Name: "orders"}}, core.QueryOptions{})
				return err
			},
			errMsg: "not established",
		},
		{
			name: "execute without connect",
			operation: func(ctx context.Context, src *Source) error {
				_, err := src.Execute(ctx, core.QueryDef{SQL: "SELECT 1"}, core.QueryOptions{})
				return err
			},
			errMsg: "not established",
		},
		{
			name: "tables without connect",
			operation: func(ctx context.Context, src *Source) error {
				_, err := src.Tables(ctx)
				return err
			},
			errMsg: "not established",
		},
		{
			name: "table columns without connect",
			operation: func(ctx context.Context, src *Source) error {
				_, err := src.TableColumns(ctx, core.TableRef{Name: "orders"})
				return err
			},
			errMsg: "not established",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			src := New(nil)

			err := tt.operation(ctx, src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewPostgresSource(t *testing.T) {
	src := New(nil)
	assert.NotNil(t, src)
	assert.Nil(t, src.DB)
	assert.False(t, src.IsConnected())
	assert.Equal(t, "public", src.DefaultSchema)

	// Close should not error even without connection
	assert.NoError(t, src.Close())
}

// TestPostgresSource_Registry verifies the source is properly registered.
func TestPostgresSource_Registry(t *testing.T) {
	assert.True(t, warehouse.IsRegistered("postgres"), "postgres source should be registered")

	factory, ok := warehouse.Get("postgres")
	require.True(t, ok, "should be able to get postgres factory")

	src := factory(nil)
	assert.NotNil(t, src)

	pg, ok := src.(*Source)
	assert.True(t, ok, "factory should return *Source")
	assert.NotNil(t, pg)
}

// TestPostgresSource_InterfaceCompliance verifies the source implements the interface.
func TestPostgresSource_InterfaceCompliance(_ *testing.T) {
	var _ warehouse.Source = (*Source)(nil)
	var _ warehouse.Source = New(nil)
}
