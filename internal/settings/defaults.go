package settings

import (
	"path/filepath"

	"github.com/rdmo-deploy/rdmoctl/internal/auth"
)

// Framework defaults inherited from rdmo.core.settings before any fragment
// runs.
var (
	coreInstalledApps = []string{
		"django.contrib.admin",
		"django.contrib.auth",
		"django.contrib.contenttypes",
		"django.contrib.sessions",
		"django.contrib.messages",
		"django.contrib.staticfiles",
		"django.contrib.humanize",
		"django.contrib.sites",
		"rdmo",
		"rdmo.core",
		"rdmo.overlays",
		"rdmo.accounts",
		"rdmo.services",
		"rdmo.domain",
		"rdmo.options",
		"rdmo.conditions",
		"rdmo.questions",
		"rdmo.tasks",
		"rdmo.views",
		"rdmo.projects",
		"rdmo.management",
		"widget_tweaks",
		"rest_framework",
		"django_filters",
		"django_extensions",
		"rules",
	}

	coreMiddleware = []string{
		"django.middleware.security.SecurityMiddleware",
		"django.contrib.sessions.middleware.SessionMiddleware",
		"django.middleware.locale.LocaleMiddleware",
		"django.middleware.common.CommonMiddleware",
		"django.middleware.csrf.CsrfViewMiddleware",
		auth.AuthenticationMiddlewareClass,
		"django.contrib.messages.middleware.MessageMiddleware",
		"django.middleware.clickjacking.XFrameOptionsMiddleware",
		"django.contrib.sites.middleware.CurrentSiteMiddleware",
	}

	coreBackends = []string{
		"rules.permissions.ObjectPermissionBackend",
		auth.ModelBackendClass,
	}

	defaultAllowedHosts = []string{"localhost", "ip6-localhost", "127.0.0.1", "[::1]"}

	exportFormats = []ExportFormat{
		{"pdf", "PDF"},
		{"rtf", "Rich Text Format"},
		{"odt", "Open Office"},
		{"docx", "Microsoft Office"},
		{"html", "HTML"},
		{"markdown", "Markdown"},
		{"mediawiki", "mediawiki"},
		{"tex", "LaTeX"},
	}
)

const (
	jsonRenderer      = "rest_framework.renderers.JSONRenderer"
	browsableRenderer = "rest_framework.renderers.BrowsableAPIRenderer"
	memcachedBackend  = "django.core.cache.backends.memcached.MemcachedCache"
	debugToolbarApp   = "debug_toolbar"
	debugToolbarMW    = "debug_toolbar.middleware.DebugToolbarMiddleware"
)

// newDefaults returns the settings every deployment starts from.
func newDefaults(base string) *Settings {
	return &Settings{
		Paths: Paths{
			BaseDir:         base,
			ProjectDir:      filepath.Join(base, "config"),
			MediaRoot:       filepath.Join(base, "media_root"),
			StaticRoot:      filepath.Join(base, "static_root"),
			FixtureDirs:     []string{filepath.Join(base, "fixtures")},
			StaticfilesDirs: []string{filepath.Join(base, "vendor")},
		},
		URLs: URLs{
			Login:                 "/account/login/",
			LoginRedirect:         "/projects/",
			Logout:                "/account/logout/",
			AccountLogoutRedirect: "/",
			Media:                 "/media/",
			Static:                "/static/",
			CSRFCookiePath:        "/",
			LanguageCookiePath:    "/",
			SessionCookiePath:     "/",
		},
		Apps: Apps{
			Installed:  clone(coreInstalledApps),
			Backends:   clone(coreBackends),
			Middleware: clone(coreMiddleware),
		},
		REST: REST{RendererClasses: []string{jsonRenderer}},
		Export: Export{
			Formats: append([]ExportFormat(nil), exportFormats...),
			PandocArgs: map[string][]string{
				"pdf": {"-V", "geometry:a4paper, margin=2.5cm", "--pdf-engine=xelatex"},
				"rtf": {"--standalone"},
			},
		},
		Features: Features{ProfileUpdate: true},
		Auth:     Auth{Extra: map[string]any{}},
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
