package preflight

import (
	"context"
	"database/sql"
	"net"
	"os/exec"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/rdmo-deploy/rdmoctl/internal/auth"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

// Checker runs the checks. The function fields default to the real
// implementations and are replaced in tests.
type Checker struct {
	OpenDB   func(driver, dsn string) (*sql.DB, error)
	Dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	Discover func(ctx context.Context, issuer string) error
	LookPath func(file string) (string, error)

	// PostgresSSLMode is passed to lib/pq as sslmode.
	PostgresSSLMode string
	Timeout         time.Duration
}

// New returns a Checker wired to the network, database drivers and PATH.
func New() *Checker {
	return &Checker{
		OpenDB: sql.Open,
		Dial:   (&net.Dialer{}).DialContext,
		Discover: func(ctx context.Context, issuer string) error {
			_, err := oidc.NewProvider(ctx, issuer)
			return err
		},
		LookPath:        exec.LookPath,
		PostgresSSLMode: "disable",
		Timeout:         5 * time.Second,
	}
}

// RunAll executes every check that applies to s.
func (c *Checker) RunAll(ctx context.Context, s *settings.Settings) []Result {
	if s == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Logging directory", s.Logging.Dir))
	results = append(results, CheckDirectoryAccess("Media root", s.Paths.MediaRoot))

	results = append(results, CheckEnvFilePermissions(s.Environment.EnvFile))
	if s.Site.MultisiteDBEnvFile != "" {
		results = append(results, CheckEnvFilePermissions(s.Site.MultisiteDBEnvFile))
	}

	results = append(results, c.CheckDatabase(ctx, s.Paths.BaseDir, s.Database))

	seen := make(map[string]bool)
	for _, name := range []string{"default", "api"} {
		cache, ok := s.Caches[name]
		if !ok || seen[cache.Location] {
			continue
		}
		seen[cache.Location] = true
		results = append(results, c.CheckCache(ctx, cache.Location))
	}

	if a, ok := s.Auth.Provider.(*auth.Allauth); ok {
		if a.Keycloak != nil {
			results = append(results, c.CheckIssuer(ctx, "Keycloak", a.Keycloak.DiscoveryURL()))
		}
		if a.NFDIAAI != nil {
			results = append(results, c.CheckIssuer(ctx, a.NFDIAAI.Name, a.NFDIAAI.ServerURL))
		}
	}

	if s.Export.ReferenceDocx != "" {
		results = append(results, CheckFile("Reference docx", s.Export.ReferenceDocx))
	}
	results = append(results, c.CheckPandoc())
	return results
}

// Failed counts the results that neither passed nor were skipped.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			n++
		}
	}
	return n
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Second
	}
	return c.Timeout
}
