package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresConfig holds libpq-style connection parameters for the target store.
type PostgresConfig struct {
	// Keyword/value connection parameters, e.g. host, port, user, password, dbname.
	Connection map[string]string
	// Maximum size of the connection pool. Zero means the pgxpool default.
	MaxOpenConns int32
}

func CreateConnectionString(values map[string]string) string {
	// https://www.postgresql.org/docs/10/libpq-connect.html#id-1.7.3.8.3.5
	result := ""
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	for k, v := range values {
		result += k + "='" + replacer.Replace(v) + "' "
	}
	return result
}

func OpenPgxPool(ctx context.Context, config PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(CreateConnectionString(config.Connection))
	if err != nil {
		return nil, err
	}
	if config.MaxOpenConns > 0 {
		poolConfig.MaxConns = config.MaxOpenConns
	}
	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	return db, db.Ping(ctx)
}
