package settings

import (
	"maps"

	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

func invalid(key, value, reason string, err error) error {
	return &envvar.InvalidConfigurationError{Key: key, Value: value, Reason: reason, Err: err}
}

// Document renders the settings under their Django names. Values are plain
// strings, numbers, booleans, slices and maps so the result encodes to JSON,
// YAML and TOML alike.
func (s *Settings) Document() map[string]any {
	formats := make([]any, len(s.Export.Formats))
	for i, f := range s.Export.Formats {
		formats[i] = []string{f.Key, f.Label}
	}
	pandoc := make(map[string]any, len(s.Export.PandocArgs))
	for k, v := range s.Export.PandocArgs {
		pandoc[k] = v
	}
	caches := make(map[string]any, len(s.Caches))
	for name, c := range s.Caches {
		caches[name] = map[string]any{
			"BACKEND":    c.Backend,
			"LOCATION":   c.Location,
			"KEY_PREFIX": c.KeyPrefix,
		}
	}

	doc := map[string]any{
		"DJANGO_ENV":             string(s.Environment.Name),
		"DJANGO_SETTINGS_MODULE": s.Environment.Module,
		"ENV_FILE":               s.Environment.EnvFile,
		"DEBUG":                  s.Environment.Debug,

		"BASE_DIR":         s.Paths.BaseDir,
		"PROJECT_DIR":      s.Paths.ProjectDir,
		"MEDIA_ROOT":       s.Paths.MediaRoot,
		"STATIC_ROOT":      s.Paths.StaticRoot,
		"FIXTURE_DIRS":     s.Paths.FixtureDirs,
		"STATICFILES_DIRS": s.Paths.StaticfilesDirs,
		"LOCALE_PATHS":     s.Paths.LocalePaths,

		"MULTISITE":          s.Site.Multisite,
		"SITE_ID":            s.Site.SiteID,
		"USE_MULTISITE_DB":   s.Site.UseMultisiteDB,
		"ALLOWED_HOSTS":      s.Site.AllowedHosts,
		"LANGUAGE_CODE":      s.Site.LanguageCode,
		"TIME_ZONE":          s.Site.TimeZone,
		"BASE_URL":           s.Site.BaseURL,
		"SECRET_KEY":         s.Site.SecretKey,
		"DEFAULT_URI_PREFIX": s.Site.DefaultURIPrefix,

		"LOGIN_URL":                   s.URLs.Login,
		"LOGIN_REDIRECT_URL":          s.URLs.LoginRedirect,
		"LOGOUT_URL":                  s.URLs.Logout,
		"ACCOUNT_LOGOUT_REDIRECT_URL": s.URLs.AccountLogoutRedirect,
		"MEDIA_URL":                   s.URLs.Media,
		"STATIC_URL":                  s.URLs.Static,
		"CSRF_COOKIE_PATH":            s.URLs.CSRFCookiePath,
		"LANGUAGE_COOKIE_PATH":        s.URLs.LanguageCookiePath,
		"SESSION_COOKIE_PATH":         s.URLs.SessionCookiePath,

		"DATABASES": map[string]any{
			"default": map[string]any{
				"ENGINE":   s.Database.Engine,
				"NAME":     s.Database.Name,
				"USER":     s.Database.User,
				"PASSWORD": s.Database.Password,
				"HOST":     s.Database.Host,
				"PORT":     s.Database.Port,
			},
		},

		"EMAIL_BACKEND":       s.Email.Backend,
		"EMAIL_HOST":          s.Email.Host,
		"EMAIL_PORT":          s.Email.Port,
		"EMAIL_HOST_USER":     s.Email.HostUser,
		"EMAIL_HOST_PASSWORD": s.Email.HostPassword,
		"EMAIL_USE_TLS":       s.Email.UseTLS,
		"EMAIL_USE_SSL":       s.Email.UseSSL,
		"DEFAULT_FROM_EMAIL":  s.Email.DefaultFrom,

		"THEME_APP":               s.Apps.ThemeApp,
		"INSTALLED_APPS":          s.Apps.Installed,
		"AUTHENTICATION_BACKENDS": s.Apps.Backends,
		"MIDDLEWARE":              s.Apps.Middleware,

		"REST_FRAMEWORK": map[string]any{
			"DEFAULT_RENDERER_CLASSES": s.REST.RendererClasses,
		},

		"EXPORT_FORMATS":                formats,
		"EXPORT_PANDOC_ARGS":            pandoc,
		"DATA_UPLOAD_MAX_NUMBER_FIELDS": s.Uploads.MaxNumberFields,
		"CACHES":                        caches,

		"LOGGING_DIR": s.Logging.Dir,
		"LOGGING":     s.Logging.Dict(),

		"VENDOR_CDN":                 s.Features.VendorCDN,
		"DEBUG_TOOLBAR":              s.Features.DebugToolbar,
		"PROFILE_UPDATE":             s.Features.ProfileUpdate,
		"PROFILE_DELETE":             s.Features.ProfileDelete,
		"ACCOUNT_ALLOW_USER_TOKEN":   s.Features.AccountAllowUserToken,
		"PROJECT_QUESTIONS_AUTOSAVE": s.Features.ProjectQuestionsAutosave,
		"ENABLE_CATALOGS_TABLE_APP":  s.Features.EnableCatalogsTableApp,
	}

	if s.Site.MultisiteDBEnvFile != "" {
		doc["MULTISITE_DB_ENV_FILE"] = s.Site.MultisiteDBEnvFile
	}
	if s.Site.RDMOVersion != "" {
		doc["RDMO_VERSION"] = s.Site.RDMOVersion
	}
	if len(s.Apps.InternalIPs) > 0 {
		doc["INTERNAL_IPS"] = s.Apps.InternalIPs
	}
	if !s.Environment.Debug {
		doc["EXPORT_REFERENCE_DOCX"] = s.Export.ReferenceDocx
	}
	if s.Auth.Provider != nil {
		doc["AUTH_PROVIDER"] = string(s.Auth.Provider.Kind())
	}
	maps.Copy(doc, s.Auth.Extra)
	return doc
}
