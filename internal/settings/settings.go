package settings

import (
	"github.com/rdmo-deploy/rdmoctl/internal/auth"
	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

// Settings is the composed configuration of one deployment. It is built once
// by Build and is not modified afterwards.
type Settings struct {
	Environment Environment
	Paths       Paths
	Site        Site
	URLs        URLs
	Database    Database
	Email       Email
	Apps        Apps
	REST        REST
	Export      Export
	Uploads     Uploads
	Caches      map[string]Cache
	Logging     Logging
	Features    Features
	Auth        Auth

	// Fragments lists the settings fragments in the order they were applied.
	Fragments []string
	// Trace records every key resolution performed while building.
	Trace []envvar.Resolution
	// Overrides holds the variables loaded from environment files, later
	// files winning. They are handed to the framework process.
	Overrides map[string]string
}

// Environment describes the selected settings environment.
type Environment struct {
	Name    envfile.Environment
	Debug   bool
	EnvFile string
	Module  string
}

// Paths holds the filesystem layout of the deployment.
type Paths struct {
	BaseDir         string
	ProjectDir      string
	MediaRoot       string
	StaticRoot      string
	FixtureDirs     []string
	StaticfilesDirs []string
	LocalePaths     []string
}

// Site holds host, locale and multisite configuration.
type Site struct {
	Multisite          bool
	SiteID             int
	UseMultisiteDB     bool
	MultisiteDBEnvFile string
	AllowedHosts       []string
	BaseURL            string
	LanguageCode       string
	TimeZone           string
	SecretKey          string
	DefaultURIPrefix   string
	RDMOVersion        string
}

// URLs holds the URL and cookie path settings that BASE_URL prefixes.
type URLs struct {
	Login                 string
	LoginRedirect         string
	Logout                string
	AccountLogoutRedirect string
	Media                 string
	Static                string
	CSRFCookiePath        string
	LanguageCookiePath    string
	SessionCookiePath     string
}

// Database is the default database connection.
type Database struct {
	Engine   string
	Name     string
	User     string
	Password string
	Host     string
	Port     string
}

// Email holds the outgoing mail configuration.
type Email struct {
	Backend      string
	Host         string
	Port         int
	HostUser     string
	HostPassword string
	UseTLS       bool
	UseSSL       bool
	DefaultFrom  string
}

// Apps holds the ordered Django application, backend and middleware lists.
type Apps struct {
	Installed   []string
	Backends    []string
	Middleware  []string
	InternalIPs []string
	ThemeApp    string
}

// REST holds the REST framework renderer classes.
type REST struct {
	RendererClasses []string
}

// ExportFormat is one entry of the export format table.
type ExportFormat struct {
	Key   string
	Label string
}

// Export holds the export format table and pandoc options.
type Export struct {
	Formats       []ExportFormat
	PandocArgs    map[string][]string
	ReferenceDocx string
}

// Uploads holds request upload limits.
type Uploads struct {
	MaxNumberFields int
}

// Cache is a single cache backend declaration.
type Cache struct {
	Backend   string
	Location  string
	KeyPrefix string
}

// Features holds the optional RDMO behaviour switches.
type Features struct {
	VendorCDN                bool
	DebugToolbar             bool
	ProfileUpdate            bool
	ProfileDelete            bool
	AccountAllowUserToken    bool
	ProjectQuestionsAutosave bool
	EnableCatalogsTableApp   bool
}

// Auth holds the selected provider and the settings it contributed.
type Auth struct {
	Provider auth.Provider
	Extra    map[string]any
}

// SettingsModule returns the framework settings module for env.
func SettingsModule(env envfile.Environment) string {
	if env == envfile.Development {
		return "config.settings.debug"
	}
	return "config.settings.production"
}
