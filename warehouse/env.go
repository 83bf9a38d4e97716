package warehouse

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"golang.org/x/xerrors"
)

// Environment variables holding warehouse credentials.
const (
	EnvHost     = "KWB_DW_HOST"
	EnvPort     = "KWB_DW_PORT"
	EnvUser     = "KWB_DW_USER"
	EnvPassword = "KWB_DW_PASSWORD"
	EnvSSLMode  = "KWB_DW_SSLMODE"
)

const (
	defaultPort    = "5432"
	defaultSSLMode = "disable"
	driverName     = "pgx"
)

// Credentials locate and authenticate against the warehouse server.
type Credentials struct {
	Host     string
	Port     string
	User     string
	Password string
	SSLMode  string
}

// CredentialsFromEnv reads credentials from the process environment.
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{
		Host:     os.Getenv(EnvHost),
		Port:     os.Getenv(EnvPort),
		User:     os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		SSLMode:  os.Getenv(EnvSSLMode),
	}
	if c.Host == "" {
		return c, xerrors.Errorf("%s is required", EnvHost)
	}
	if c.User == "" {
		return c, xerrors.Errorf("%s is required", EnvUser)
	}
	return c, nil
}

// DSN returns a postgres URL for database.
func (c Credentials) DSN(database string) string {
	port := c.Port
	if port == "" {
		port = defaultPort
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, port),
		Path:     "/" + database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Connector opens a handle to the named database. The caller closes it.
type Connector func(ctx context.Context, database string) (*sql.DB, error)

// PostgresConnector opens databases on the server described by c.
func PostgresConnector(c Credentials) Connector {
	return func(_ context.Context, database string) (*sql.DB, error) {
		return sql.Open(driverName, c.DSN(database))
	}
}
