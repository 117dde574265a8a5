package biosql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JonMunkholm/seqannot/internal/config"
	"github.com/JonMunkholm/seqannot/internal/logging"
)

// Open connects to the database described by cfg, verifies the connection
// and returns a Store ready for querying. The caller must Close it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var q Querier
	switch dialect.Name {
	case Postgres.Name:
		q, err = openPostgres(ctx, cfg)
	case MySQL.Name:
		q, err = openMySQL(ctx, cfg)
	case SQLite.Name:
		q, err = openSQLite(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("connected to database",
		"driver", dialect.Name,
		"name", cfg.Name,
		"host", cfg.Host,
	)

	return NewStore(q, dialect), nil
}

func port(cfg config.DatabaseConfig, d Dialect) int {
	if cfg.Port != 0 {
		return cfg.Port
	}
	return d.DefaultPort
}

// PostgresURL builds a connection URL from cfg.
func PostgresURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port(cfg, Postgres))),
		Path:   "/" + cfg.Name,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String()
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (Querier, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	// Queries run one after another; a single read-only session is enough.
	poolConfig.MaxConns = 1
	poolConfig.MinConns = 0
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "seqfeature-annotations"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return PoolQuerier{Pool: pool}, nil
}

// MySQLDSN builds a go-sql-driver DSN from cfg.
func MySQLDSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port(cfg, MySQL)))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.ConnectTimeout
	return mc.FormatDSN()
}

func openMySQL(ctx context.Context, cfg config.DatabaseConfig) (Querier, error) {
	db, err := sql.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return pingDB(ctx, db, "mysql")
}

// SQLiteDSN builds a modernc.org/sqlite DSN opening path read-only.
func SQLiteDSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=query_only(1)"
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig) (Querier, error) {
	// sqlite would silently create a missing file.
	if _, err := os.Stat(cfg.Name); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", SQLiteDSN(cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return pingDB(ctx, db, "sqlite")
}

func pingDB(ctx context.Context, db *sql.DB, driver string) (Querier, error) {
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return DBQuerier{DB: db}, nil
}
