package auth

import (
	"strings"

	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

// Keycloak is the allauth Keycloak social account provider.
type Keycloak struct {
	ServerURL string
	Realm     string
}

// DiscoveryURL returns the realm's OpenID Connect issuer URL.
func (k Keycloak) DiscoveryURL() string {
	return strings.TrimRight(k.ServerURL, "/") + "/realms/" + k.Realm
}

// OpenIDConnect is a generic allauth OpenID Connect provider, used for the
// NFDI AAI community proxy.
type OpenIDConnect struct {
	ID        string
	Name      string
	ServerURL string
	ClientID  string
}

// Allauth enables django-allauth with optional social providers.
// UseKeycloak and UseNFDIAAI come from the selection flags; Keycloak and
// NFDIAAI are filled by Configure.
type Allauth struct {
	UseKeycloak bool
	UseNFDIAAI  bool

	Keycloak *Keycloak
	NFDIAAI  *OpenIDConnect
}

// Configure reads the Keycloak server and realm when Keycloak is enabled.
// The NFDI AAI flag only enables allauth; its OpenID Connect app is added
// when both NFDI_AAI_SERVER_URL and NFDI_AAI_CLIENT_ID are set.
func (a *Allauth) Configure(r *envvar.Resolver) error {
	a.Keycloak, a.NFDIAAI = nil, nil
	if a.UseKeycloak {
		url, err := r.String("KEYCLOAK_SERVER_URL")
		if err != nil {
			return err
		}
		realm, err := r.String("KEYCLOAK_REALM")
		if err != nil {
			return err
		}
		a.Keycloak = &Keycloak{ServerURL: url, Realm: realm}
	}
	if a.UseNFDIAAI {
		url, err := r.String("NFDI_AAI_SERVER_URL", "")
		if err != nil {
			return err
		}
		clientID, err := r.String("NFDI_AAI_CLIENT_ID", "")
		if err != nil {
			return err
		}
		if url != "" && clientID != "" {
			a.NFDIAAI = &OpenIDConnect{ID: "nfdi-aai", Name: "NFDI AAI", ServerURL: url, ClientID: clientID}
		}
	}
	return nil
}

func (*Allauth) Kind() Kind { return KindAllauth }

func (a *Allauth) Contribute() Contribution {
	c := Contribution{
		InstalledApps: []string{
			"allauth",
			"allauth.account",
			"allauth.socialaccount",
		},
		Backends: []BackendInsert{
			{Class: "allauth.account.auth_backends.AuthenticationBackend"},
		},
		Extra: map[string]any{
			"ACCOUNT":                   true,
			"ACCOUNT_SIGNUP":            false,
			"SOCIALACCOUNT":             true,
			"SOCIALACCOUNT_SIGNUP":      true,
			"SOCIALACCOUNT_AUTO_SIGNUP": true,
		},
	}

	providers := map[string]any{}
	if a.Keycloak != nil {
		c.InstalledApps = append(c.InstalledApps, "allauth.socialaccount.providers.keycloak")
		providers["keycloak"] = map[string]any{
			"KEYCLOAK_URL":   a.Keycloak.ServerURL,
			"KEYCLOAK_REALM": a.Keycloak.Realm,
		}
	}
	if a.NFDIAAI != nil {
		c.InstalledApps = append(c.InstalledApps, "allauth.socialaccount.providers.openid_connect")
		providers["openid_connect"] = map[string]any{
			"APPS": []any{map[string]any{
				"provider_id": a.NFDIAAI.ID,
				"name":        a.NFDIAAI.Name,
				"client_id":   a.NFDIAAI.ClientID,
				"settings":    map[string]any{"server_url": a.NFDIAAI.ServerURL},
			}},
		}
	}
	if len(providers) > 0 {
		c.Extra["SOCIALACCOUNT_PROVIDERS"] = providers
	}
	return c
}

// Attribute maps a Shibboleth attribute to a user field.
type Attribute struct {
	Required bool
	Field    string
}

// Shibboleth enables the Shibboleth remote-user backend.
type Shibboleth struct {
	AttributeMap map[string]Attribute
}

// NewShibboleth returns the provider with the standard attribute map.
func NewShibboleth() *Shibboleth {
	return &Shibboleth{AttributeMap: map[string]Attribute{
		"uid":       {Required: true, Field: "username"},
		"givenName": {Required: true, Field: "first_name"},
		"sn":        {Required: true, Field: "last_name"},
		"mail":      {Required: true, Field: "email"},
	}}
}

func (*Shibboleth) Kind() Kind { return KindShibboleth }

func (*Shibboleth) Configure(*envvar.Resolver) error { return nil }

func (s *Shibboleth) Contribute() Contribution {
	attrs := make(map[string]any, len(s.AttributeMap))
	for name, a := range s.AttributeMap {
		attrs[name] = []any{a.Required, a.Field}
	}
	return Contribution{
		InstalledApps: []string{"shibboleth"},
		Backends: []BackendInsert{
			{Class: "shibboleth.backends.ShibbolethRemoteUserBackend"},
		},
		Middleware: []MiddlewareInsert{
			{Class: "shibboleth.middleware.ShibbolethRemoteUserMiddleware", After: AuthenticationMiddlewareClass},
		},
		LoginURL:      "/Shibboleth.sso/Login?target=/projects",
		LogoutURL:     "/Shibboleth.sso/Logout",
		ProfileUpdate: off(),
		ProfileDelete: off(),
		Extra: map[string]any{
			"SHIBBOLETH":                    true,
			"SHIBBOLETH_UNQUOTE_ATTRIBUTES": true,
			"SHIBBOLETH_ATTRIBUTE_MAP":      attrs,
		},
	}
}

// LDAP enables django-auth-ldap.
type LDAP struct {
	ServerURI    string
	BindDN       string
	BindPassword string
	SearchBase   string
	UserFilter   string
	AttrMap      map[string]string
}

// Configure reads the server, bind credentials and user search.
func (l *LDAP) Configure(r *envvar.Resolver) error {
	l.AttrMap = map[string]string{
		"first_name": "givenName",
		"last_name":  "sn",
		"email":      "mail",
	}
	var err error
	if l.ServerURI, err = r.String("AUTH_LDAP_SERVER_URI"); err != nil {
		return err
	}
	if l.BindDN, err = r.String("AUTH_LDAP_BIND_DN"); err != nil {
		return err
	}
	if l.BindPassword, err = r.String("AUTH_LDAP_BIND_PASSWORD"); err != nil {
		return err
	}
	if l.SearchBase, err = r.String("AUTH_LDAP_USER_SEARCH_BASE"); err != nil {
		return err
	}
	if l.UserFilter, err = r.String("AUTH_LDAP_USER_FILTER", "(uid=%(user)s)"); err != nil {
		return err
	}
	if !strings.HasPrefix(l.ServerURI, "ldap://") && !strings.HasPrefix(l.ServerURI, "ldaps://") {
		return envvar.Invalid("AUTH_LDAP_SERVER_URI", "%q must start with ldap:// or ldaps://", l.ServerURI)
	}
	return nil
}

func (*LDAP) Kind() Kind { return KindLDAP }

func (l *LDAP) Contribute() Contribution {
	attrs := make(map[string]any, len(l.AttrMap))
	for k, v := range l.AttrMap {
		attrs[k] = v
	}
	return Contribution{
		Backends: []BackendInsert{
			{Class: "django_auth_ldap.backend.LDAPBackend", Before: ModelBackendClass},
		},
		ProfileUpdate: off(),
		Extra: map[string]any{
			"AUTH_LDAP_SERVER_URI":    l.ServerURI,
			"AUTH_LDAP_BIND_DN":       l.BindDN,
			"AUTH_LDAP_BIND_PASSWORD": l.BindPassword,
			"AUTH_LDAP_USER_SEARCH": map[string]any{
				"base_dn":   l.SearchBase,
				"scope":     "SCOPE_SUBTREE",
				"filterstr": l.UserFilter,
			},
			"AUTH_LDAP_USER_ATTR_MAP": attrs,
		},
	}
}
