package settings

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/language"

	"github.com/rdmo-deploy/rdmoctl/internal/auth"
	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
)

// profileSettingsSince is the first rdmo release that understands
// PROFILE_DELETE, ACCOUNT_ALLOW_USER_TOKEN and PROJECT_QUESTIONS_AUTOSAVE.
var profileSettingsSince = semver.MustParse("1.10.0")

func applyBase(b *builder) {
	s := b.s

	s.Site.Multisite = b.boolean("MULTISITE", true)
	s.Site.SiteID = b.integer("SITE_ID")
	s.Site.UseMultisiteDB = b.boolean("USE_MULTISITE_DB", true)
	if b.ok() && (s.Site.Multisite || s.Site.SiteID != 0) && s.Site.UseMultisiteDB {
		s.Site.MultisiteDBEnvFile = b.path("MULTISITE_DB_ENV_FILE")
		b.check(func() error {
			return envfile.Load(b.r.Env(), "MULTISITE_DB_ENV_FILE", s.Site.MultisiteDBEnvFile)
		})
	}

	s.Site.AllowedHosts = clone(defaultAllowedHosts)
	for _, h := range strings.Split(b.str("ALLOWED_HOSTS"), ", ") {
		if h != "" {
			s.Site.AllowedHosts = append(s.Site.AllowedHosts, h)
		}
	}

	s.Site.LanguageCode = b.str("LANGUAGE_CODE", "de-de")
	b.check(func() error {
		if _, err := language.Parse(s.Site.LanguageCode); err != nil {
			return invalid("LANGUAGE_CODE", s.Site.LanguageCode, "not a BCP 47 language tag", err)
		}
		return nil
	})
	s.Site.TimeZone = b.str("TIME_ZONE", "Europe/Berlin")
	b.check(func() error {
		if _, err := time.LoadLocation(s.Site.TimeZone); err != nil {
			return invalid("TIME_ZONE", s.Site.TimeZone, "unknown time zone", err)
		}
		return nil
	})

	s.Site.BaseURL = b.str("BASE_URL", "")
	if s.Site.BaseURL != "" {
		s.URLs.prefix(s.Site.BaseURL)
	}

	s.Site.SecretKey = b.str("SECRET_KEY")
	s.Site.DefaultURIPrefix = b.str("DEFAULT_URI_PREFIX")

	base := s.Paths.BaseDir
	s.Paths.LocalePaths = []string{
		filepath.Join(base, "locale"),
		filepath.Join(base, "theme", "templates", "locale"),
		filepath.Join(base, "accounts", "templates", "locale"),
	}

	s.Database = Database{
		Engine:   b.str("DB_ENGINE"),
		Name:     b.str("DB_NAME"),
		User:     b.str("DB_USER"),
		Password: b.str("DB_PASSWORD"),
		Host:     b.str("DB_HOST"),
		Port:     b.str("DB_PORT"),
	}

	s.Email = Email{
		Backend:      b.str("EMAIL_BACKEND", "django.core.mail.backends.smtp.EmailBackend"),
		Host:         b.str("EMAIL_HOST", "localhost"),
		Port:         b.integer("EMAIL_PORT", 25),
		HostUser:     b.str("EMAIL_HOST_USER"),
		HostPassword: b.str("EMAIL_HOST_PASSWORD"),
		UseTLS:       b.boolean("EMAIL_USE_TLS", false),
		UseSSL:       b.boolean("EMAIL_USE_SSL", false),
		DefaultFrom:  b.str("DEFAULT_FROM_EMAIL"),
	}
	b.check(func() error {
		if s.Email.UseTLS && s.Email.UseSSL {
			return invalid("EMAIL_USE_SSL", "True", "EMAIL_USE_TLS and EMAIL_USE_SSL are mutually exclusive", nil)
		}
		return nil
	})

	s.Features.VendorCDN = b.boolean("VENDOR_CDN", false)

	s.Apps.ThemeApp = b.str("THEME_APP", "theme")
	s.Apps.Installed = slices.Insert(s.Apps.Installed, 0, s.Apps.ThemeApp)

	s.Uploads.MaxNumberFields = b.integer("DATA_UPLOAD_MAX_NUMBER_FIELDS", 3000)

	location := b.str("CACHE_LOCATION", "127.0.0.1:11211")
	s.Caches = map[string]Cache{
		"default": {Backend: memcachedBackend, Location: location, KeyPrefix: "rdmo_default"},
		"api":     {Backend: memcachedBackend, Location: location, KeyPrefix: "rdmo_api"},
	}

	s.Features.ProfileDelete = b.boolean("PROFILE_DELETE", false)
	s.Features.AccountAllowUserToken = b.boolean("ACCOUNT_ALLOW_USER_TOKEN", false)
	s.Features.ProjectQuestionsAutosave = b.boolean("PROJECT_QUESTIONS_AUTOSAVE", false)
	s.Features.EnableCatalogsTableApp = b.boolean("ENABLE_CATALOGS_TABLE_APP", false)

	s.Site.RDMOVersion = b.str("RDMO_VERSION", "")
	if s.Site.RDMOVersion != "" {
		b.check(func() error { return checkVersion(s) })
	}
}

func checkVersion(s *Settings) error {
	v, err := semver.NewVersion(s.Site.RDMOVersion)
	if err != nil {
		return invalid("RDMO_VERSION", s.Site.RDMOVersion, "not a semantic version", err)
	}
	if !v.LessThan(profileSettingsSince) {
		return nil
	}
	f := s.Features
	if f.ProfileDelete || f.AccountAllowUserToken || f.ProjectQuestionsAutosave {
		return invalid("RDMO_VERSION", s.Site.RDMOVersion,
			"PROFILE_DELETE, ACCOUNT_ALLOW_USER_TOKEN and PROJECT_QUESTIONS_AUTOSAVE need rdmo >= "+profileSettingsSince.String(), nil)
	}
	return nil
}

func applyLogging(b *builder) {
	dir := b.path("LOGGING_DIR", filepath.Join(b.s.Paths.BaseDir, "log"))
	b.s.Logging = newLogging(dir)
}

func applyAuth(p auth.Provider) func(*builder) {
	return func(b *builder) {
		s := b.s
		b.check(func() error { return p.Configure(b.r) })
		if !b.ok() {
			return
		}
		c := p.Contribute()

		s.Apps.Installed = append(s.Apps.Installed, c.InstalledApps...)
		for _, be := range c.Backends {
			s.Apps.Backends = insertBefore(s.Apps.Backends, be.Class, be.Before)
		}
		for _, mw := range c.Middleware {
			s.Apps.Middleware = insertAfter(s.Apps.Middleware, mw.Class, mw.After)
		}
		if c.LoginURL != "" {
			s.URLs.Login = c.LoginURL
		}
		if c.LogoutURL != "" {
			s.URLs.Logout = c.LogoutURL
		}
		if c.ProfileUpdate != nil {
			s.Features.ProfileUpdate = *c.ProfileUpdate
		}
		if c.ProfileDelete != nil {
			s.Features.ProfileDelete = *c.ProfileDelete
		}
		maps.Copy(s.Auth.Extra, c.Extra)
	}
}

func applyEnvironment(env envfile.Environment) func(*builder) {
	return func(b *builder) {
		s := b.s
		switch env {
		case envfile.Development:
			s.Environment.Debug = true
			s.REST.RendererClasses = append(s.REST.RendererClasses, browsableRenderer)
			s.Features.DebugToolbar = b.boolean("DEBUG_TOOLBAR", false)
			if s.Features.DebugToolbar {
				s.Apps.Installed = append(s.Apps.Installed, debugToolbarApp)
				s.Apps.Middleware = slices.Insert(s.Apps.Middleware, 0, debugToolbarMW)
				s.Apps.InternalIPs = []string{"127.0.0.1"}
			}
		default:
			s.Environment.Debug = false
			s.Export.ReferenceDocx = b.path("EXPORT_REFERENCE_DOCX", "")
		}
		if s.Features.EnableCatalogsTableApp {
			s.Apps.Installed = append(s.Apps.Installed, "django_tables2", "catalogs_table_app")
		}
	}
}

// insertBefore places class directly before anchor, or appends it when the
// anchor is empty or absent.
func insertBefore(list []string, class, anchor string) []string {
	if i := slices.Index(list, anchor); anchor != "" && i >= 0 {
		return slices.Insert(list, i, class)
	}
	return append(list, class)
}

// insertAfter places class directly after anchor, or appends it when the
// anchor is empty or absent.
func insertAfter(list []string, class, anchor string) []string {
	if i := slices.Index(list, anchor); anchor != "" && i >= 0 {
		return slices.Insert(list, i+1, class)
	}
	return append(list, class)
}
