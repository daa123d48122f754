// Package dialer picks the remote document store implementation from a connection URI.
package dialer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	docpostgres "github.com/Apurer/go-gin-storefront/internal/platform/docstore/postgres"
	docredis "github.com/Apurer/go-gin-storefront/internal/platform/docstore/redis"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore/sqldb"
)

// Backend names a supported remote store.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendMySQL    Backend = "mysql"
)

// Resolve maps a URI scheme onto a backend.
func Resolve(uri string) (Backend, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("document store URI is empty")
	}
	scheme, _, found := strings.Cut(uri, "://")
	if !found {
		if strings.HasPrefix(uri, "sqlite:") {
			return BackendSQLite, nil
		}
		// libpq key=value connection strings carry no scheme.
		if strings.Contains(uri, "=") {
			return BackendPostgres, nil
		}
		return "", fmt.Errorf("document store URI %q has no scheme", uri)
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "redis", "rediss":
		return BackendRedis, nil
	case "sqlite", "sqlite3", "file":
		return BackendSQLite, nil
	case "mysql":
		return BackendMySQL, nil
	default:
		return "", fmt.Errorf("unsupported document store scheme %q", scheme)
	}
}

// Open dials the backend selected by uri and prepares the given collections.
func Open(ctx context.Context, uri string, collections ...string) (docstore.Remote, error) {
	backend, err := Resolve(uri)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendPostgres:
		return docpostgres.Open(ctx, uri, collections...)
	case BackendRedis:
		return docredis.Open(ctx, uri)
	case BackendSQLite:
		return sqldb.OpenSQLite(ctx, sqlitePath(uri), collections...)
	case BackendMySQL:
		return sqldb.OpenMySQL(ctx, uri, collections...)
	default:
		return nil, fmt.Errorf("unsupported document store backend %q", backend)
	}
}

// New returns a Dialer bound to uri, for use by a docstore.Supervisor.
func New(uri string, collections ...string) docstore.Dialer {
	return func(ctx context.Context) (docstore.Remote, error) {
		return Open(ctx, uri, collections...)
	}
}

// Redact hides the password component of a URI for logging.
func Redact(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.User == nil {
		return uri
	}
	if _, ok := parsed.User.Password(); ok {
		parsed.User = url.UserPassword(parsed.User.Username(), "xxxxx")
	}
	return parsed.String()
}

func sqlitePath(uri string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://", "file://", "sqlite:"} {
		if strings.HasPrefix(uri, prefix) {
			return strings.TrimPrefix(uri, prefix)
		}
	}
	return uri
}
