package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/rdmo-deploy/rdmoctl/internal/platform"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := platform.CheckAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckEnvFilePermissions verifies that an env file is readable only by its
// owner.
func CheckEnvFilePermissions(path string) Result {
	name := "Env file " + filepath.Base(path)
	private, perm, err := platform.IsPrivate(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !private {
		return Result{Name: name, Detail: fmt.Sprintf("%s has mode %04o, expected %04o", path, perm, platform.PrivateMode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (mode %04o)", path, perm)}
}

// CheckFile verifies that a regular file exists.
func CheckFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// driverFor maps a Django database engine to a database/sql driver and DSN.
// Engines without a bundled driver return an empty driver name.
func (c *Checker) driverFor(base string, db settings.Database) (driver, dsn string) {
	switch {
	case strings.HasSuffix(db.Engine, "postgresql"), strings.HasSuffix(db.Engine, "postgresql_psycopg2"):
		u := url.URL{
			Scheme: "postgres",
			Host:   db.Host,
			Path:   "/" + db.Name,
		}
		if u.Host == "" {
			u.Host = "localhost"
		}
		if db.Port != "" {
			u.Host = net.JoinHostPort(u.Host, db.Port)
		}
		if db.User != "" {
			u.User = url.UserPassword(db.User, db.Password)
		}
		q := url.Values{}
		if c.PostgresSSLMode != "" {
			q.Set("sslmode", c.PostgresSSLMode)
		}
		u.RawQuery = q.Encode()
		return "postgres", u.String()

	case strings.HasSuffix(db.Engine, "sqlite3"):
		path := db.Name
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}
		return "sqlite", u.String()
	}
	return "", ""
}

// CheckDatabase opens the configured database and pings it.
func (c *Checker) CheckDatabase(ctx context.Context, base string, db settings.Database) Result {
	const name = "Database"

	driver, dsn := c.driverFor(base, db)
	if driver == "" {
		return Result{Name: name, Skipped: true, Detail: fmt.Sprintf("no driver for %s", db.Engine)}
	}

	conn, err := c.OpenDB(driver, dsn)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	defer conn.Close()

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s %s unreachable (%v)", driver, db.Name, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s reachable", driver, db.Name)}
}

// CheckCache dials a memcached location. "unix:" locations use a Unix
// socket.
func (c *Checker) CheckCache(ctx context.Context, location string) Result {
	name := "Cache " + location

	network, addr := "tcp", location
	if strings.HasPrefix(location, "unix:") {
		network, addr = "unix", strings.TrimPrefix(location, "unix:")
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	conn, err := c.Dial(dialCtx, network, addr)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	conn.Close()
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckIssuer fetches the OpenID Connect discovery document of issuer.
func (c *Checker) CheckIssuer(ctx context.Context, name, issuer string) Result {
	discoverCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	if err := c.Discover(discoverCtx, issuer); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("discovery failed (%s)", summarizeNetError(err))}
	}
	return Result{Name: name, Passed: true, Detail: issuer}
}

// CheckPandoc looks for pandoc on PATH.
func (c *Checker) CheckPandoc() Result {
	const name = "pandoc"
	path, err := c.LookPath("pandoc")
	if err != nil {
		return Result{Name: name, Detail: "not found on PATH (required for exports)"}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
