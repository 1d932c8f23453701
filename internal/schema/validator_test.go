package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

const validYAML = `
DJANGO_ENV: production
DEBUG: false
SITE_ID: 1
SECRET_KEY: s3cret
DEFAULT_URI_PREFIX: https://rdmo.example.org/terms/
ALLOWED_HOSTS: [localhost, rdmo.example.org]
LANGUAGE_CODE: de-de
BASE_URL: ""
DATABASES:
  default:
    ENGINE: django.db.backends.postgresql
    NAME: rdmo
    PORT: "5432"
INSTALLED_APPS: [theme, rdmo]
MIDDLEWARE: [django.middleware.common.CommonMiddleware]
AUTHENTICATION_BACKENDS: [django.contrib.auth.backends.ModelBackend]
EMAIL_PORT: 25
EXPORT_FORMATS:
  - [pdf, PDF]
CACHES:
  default:
    BACKEND: django.core.cache.backends.memcached.MemcachedCache
    LOCATION: 127.0.0.1:11211
LOGGING:
  version: 1
  handlers:
    console: {level: DEBUG, class: logging.StreamHandler}
  loggers:
    rdmo: {handlers: [console], level: DEBUG, propagate: false}
`

// testDocument decodes validYAML into a fresh JSON-shaped document.
func testDocument(t *testing.T) map[string]any {
	t.Helper()
	var raw any
	if err := yaml.Unmarshal([]byte(validYAML), &raw); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func hasIssue(res *ValidationResult, path, keyword string) bool {
	for _, issue := range res.Issues {
		if issue.Path == path && issue.Keyword == keyword {
			return true
		}
	}
	return false
}

func TestValidate_SchemaCompiles(t *testing.T) {
	schema, err := getSchema()
	if err != nil {
		t.Fatalf("getSchema() error: %v", err)
	}
	if schema == nil {
		t.Fatal("getSchema() returned nil schema")
	}
}

func TestValidateDocument_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(doc map[string]any)
		path    string
		keyword string
	}{
		{"site id zero", func(d map[string]any) { d["SITE_ID"] = 0 }, "/SITE_ID", "minimum"},
		{"empty secret", func(d map[string]any) { d["SECRET_KEY"] = "" }, "/SECRET_KEY", "minLength"},
		{"missing secret", func(d map[string]any) { delete(d, "SECRET_KEY") }, "", "required"},
		{"uri prefix", func(d map[string]any) { d["DEFAULT_URI_PREFIX"] = "rdmo.example.org" }, "/DEFAULT_URI_PREFIX", "pattern"},
		{"email port", func(d map[string]any) { d["EMAIL_PORT"] = 70000 }, "/EMAIL_PORT", "maximum"},
		{"duplicate app", func(d map[string]any) { d["INSTALLED_APPS"] = []any{"rdmo", "rdmo"} }, "/INSTALLED_APPS", "uniqueItems"},
		{"db port", func(d map[string]any) {
			d["DATABASES"].(map[string]any)["default"].(map[string]any)["PORT"] = "postgres"
		}, "/DATABASES/default/PORT", "pattern"},
		{"ldap uri", func(d map[string]any) { d["AUTH_LDAP_SERVER_URI"] = "ldap.example.org" }, "/AUTH_LDAP_SERVER_URI", "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument(t)
			tt.mutate(doc)

			res, err := ValidateDocument(doc)
			if err != nil {
				t.Fatalf("ValidateDocument error: %v", err)
			}
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			if !hasIssue(res, tt.path, tt.keyword) {
				t.Errorf("expected issue %s at %q, got %+v", tt.keyword, tt.path, res.Issues)
			}
			for _, issue := range res.Issues {
				if issue.Message == "" {
					t.Errorf("issue without message: %+v", issue)
				}
			}
		})
	}
}

func TestValidateFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid, got %+v", res.Issues)
	}
}

func TestValidate_InvalidYAML(t *testing.T) {
	if _, err := Validate([]byte("DEBUG: [unterminated")); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	if _, err := ValidateFile(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestValidateDocument_BuiltSettings(t *testing.T) {
	dir := t.TempDir()
	env := "SITE_ID=1\nUSE_MULTISITE_DB=False\nALLOWED_HOSTS=rdmo.example.org\n" +
		"SECRET_KEY=s3cret\nDEFAULT_URI_PREFIX=https://rdmo.example.org/terms/\n" +
		"DB_ENGINE=django.db.backends.sqlite3\nDB_NAME=rdmo.sqlite3\nDB_USER=\nDB_PASSWORD=\nDB_HOST=\nDB_PORT=\n" +
		"EMAIL_HOST_USER=\nEMAIL_HOST_PASSWORD=\nDEFAULT_FROM_EMAIL=rdmo@example.org\n"
	if err := os.WriteFile(filepath.Join(dir, envfile.ProductionFile), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := settings.Build(settings.Options{BaseDir: dir, Env: envvar.FromMap(nil)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res, err := ValidateDocument(s.Document())
	if err != nil {
		t.Fatalf("ValidateDocument error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected built settings to be valid, got %+v", res.Issues)
	}
}
