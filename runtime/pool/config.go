package pool

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds connection pool configuration. It is read once, when the
// pool is constructed.
type Config struct {
	// Driver is the database/sql driver: "postgres" (lib/pq), "pgx",
	// "mysql" or "sqlite3".
	Driver string
	// DSN, when set, is used verbatim instead of the connection fields below.
	DSN string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxConnections is the maximum number of open connections (0 = unlimited).
	MaxConnections int
	// InitialConnections are opened when the pool is constructed.
	InitialConnections int
	// IdleTimeout is the maximum idle time of a connection.
	IdleTimeout time.Duration
	// MaxLifetime is the maximum lifetime of a connection.
	MaxLifetime time.Duration
	// HealthCheckInterval is how often to run health checks (0 = never).
	HealthCheckInterval time.Duration
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		Driver:             "postgres",
		Host:               "localhost",
		Port:               5432,
		Database:           "postgres",
		User:               "postgres",
		SSLMode:            "disable",
		MaxConnections:     5,
		InitialConnections: 2,
		IdleTimeout:        30 * time.Second,
		MaxLifetime:        120 * time.Second,
	}
}

// DriverName maps a provider name to its database/sql driver name.
func DriverName(provider string) string {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres"
	case "pgx":
		return "pgx"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

// DataSourceName builds the driver connection string.
func (c Config) DataSourceName() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch DriverName(c.Driver) {
	case "postgres", "pgx":
		pairs := []string{
			"host=" + quote(c.Host),
			"port=" + strconv.Itoa(c.Port),
			"dbname=" + quote(c.Database),
			"user=" + quote(c.User),
		}
		if c.Password != "" {
			pairs = append(pairs, "password="+quote(c.Password))
		}
		if c.SSLMode != "" {
			pairs = append(pairs, "sslmode="+quote(c.SSLMode))
		}
		return strings.Join(pairs, " "), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "sqlite3":
		return c.Database, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", c.Driver)
	}
}

// quote renders a keyword/value connection string value.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
