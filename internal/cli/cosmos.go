package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/internal/cosmos"
)

// ConnectionStringEnv is read when --connection-string is not given.
const ConnectionStringEnv = "COSMOS_CONNECTION_STRING"

// CosmosOptions are the flags that locate a live container.
type CosmosOptions struct {
	ConnectionString string
	Database         string
	Container        string
	PartitionKey     string
}

func (o *CosmosOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ConnectionString, "connection-string", "",
		"Cosmos connection string (default $"+ConnectionStringEnv+")")
	cmd.Flags().StringVar(&o.Database, "cosmos-database", "", "Cosmos database name")
	cmd.Flags().StringVar(&o.Container, "cosmos-container", "", "Cosmos container name")
	cmd.Flags().StringVar(&o.PartitionKey, "partition-key", "",
		"partition key value (queries are cross-partition when empty)")
}

func (o *CosmosOptions) connect() (*cosmos.Container, error) {
	connStr := o.ConnectionString
	if connStr == "" {
		connStr = os.Getenv(ConnectionStringEnv)
	}
	if connStr == "" {
		return nil, errors.New("--connection-string or $" + ConnectionStringEnv + " is required")
	}
	if o.Database == "" || o.Container == "" {
		return nil, errors.New("--cosmos-database and --cosmos-container are required")
	}

	var opts []cosmos.Option
	if o.PartitionKey != "" {
		opts = append(opts, cosmos.WithPartitionKey(o.PartitionKey))
	}
	return cosmos.Connect(connStr, o.Database, o.Container, opts...)
}
