package auth

import (
	"fmt"

	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

// Kind identifies the selected authentication provider.
type Kind string

const (
	KindModelBackend Kind = "model"
	KindAllauth      Kind = "allauth"
	KindShibboleth   Kind = "shibboleth"
	KindLDAP         Kind = "ldap"
)

// Feature flags read during selection.
const (
	KeyUseAllauth    = "AUTH_USE_ALLAUTH"
	KeyUseKeycloak   = "AUTH_USE_KEYCLOAK"
	KeyUseNFDIAAI    = "AUTH_USE_NFDI_AAI"
	KeyUseShibboleth = "AUTH_USE_SHIBBOLETH"
	KeyUseLDAP       = "AUTH_USE_LDAP"
)

// Django class paths shared by several providers.
const (
	ModelBackendClass             = "django.contrib.auth.backends.ModelBackend"
	AuthenticationMiddlewareClass = "django.contrib.auth.middleware.AuthenticationMiddleware"
)

// Provider is the authentication backend selected for a deployment.
// Configure resolves the provider's own keys; it runs in the auth fragment,
// after the base fragment has loaded every env file.
type Provider interface {
	Kind() Kind
	Configure(r *envvar.Resolver) error
	Contribute() Contribution
}

// MiddlewareInsert places a middleware class directly after another one.
// An empty After appends to the end.
type MiddlewareInsert struct {
	Class string
	After string
}

// BackendInsert places an authentication backend directly before another
// one. An empty Before appends to the end.
type BackendInsert struct {
	Class  string
	Before string
}

// Contribution describes what a provider adds to the composed settings.
type Contribution struct {
	InstalledApps []string
	Backends      []BackendInsert
	Middleware    []MiddlewareInsert

	// LoginURL and LogoutURL replace the framework defaults when non-empty.
	LoginURL  string
	LogoutURL string

	// ProfileUpdate and ProfileDelete are forced off when non-nil and false.
	ProfileUpdate *bool
	ProfileDelete *bool

	// Extra holds provider-specific Django settings by name.
	Extra map[string]any
}

// Select picks the provider from the AUTH_USE_* flags alone. Allauth is
// chosen by any of its flags, Shibboleth is mutually exclusive with it, and
// LDAP takes precedence over both. The returned provider is not configured.
func Select(r *envvar.Resolver) (Provider, error) {
	flags := make(map[string]bool, 5)
	for _, key := range []string{KeyUseAllauth, KeyUseKeycloak, KeyUseNFDIAAI, KeyUseShibboleth, KeyUseLDAP} {
		v, err := r.Bool(key, false)
		if err != nil {
			return nil, err
		}
		flags[key] = v
	}

	useAllauth := flags[KeyUseAllauth] || flags[KeyUseKeycloak] || flags[KeyUseNFDIAAI]
	if flags[KeyUseShibboleth] && useAllauth {
		return nil, envvar.Invalid(KeyUseShibboleth, "Shibboleth and Allauth are mutually exclusive")
	}

	switch {
	case flags[KeyUseLDAP]:
		return &LDAP{}, nil
	case flags[KeyUseShibboleth]:
		return NewShibboleth(), nil
	case useAllauth:
		return &Allauth{UseKeycloak: flags[KeyUseKeycloak], UseNFDIAAI: flags[KeyUseNFDIAAI]}, nil
	}
	return ModelBackend{}, nil
}

// ModelBackend keeps the framework's default backends.
type ModelBackend struct{}

func (ModelBackend) Kind() Kind { return KindModelBackend }

func (ModelBackend) Configure(*envvar.Resolver) error { return nil }

func (ModelBackend) Contribute() Contribution { return Contribution{} }

// Module returns the settings fragment name of a provider, e.g. "auth/ldap".
func Module(p Provider) string {
	return fmt.Sprintf("auth/%s", p.Kind())
}

func off() *bool {
	b := false
	return &b
}
