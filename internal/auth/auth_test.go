package auth

import (
	"errors"
	"testing"

	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

func resolver(vars map[string]string) *envvar.Resolver {
	return envvar.New(envvar.FromMap(vars))
}

// configured selects and configures a provider against vars.
func configured(vars map[string]string) (Provider, error) {
	r := resolver(vars)
	p, err := Select(r)
	if err != nil {
		return nil, err
	}
	if err := p.Configure(r); err != nil {
		return nil, err
	}
	return p, nil
}

func TestSelect_Default(t *testing.T) {
	p, err := Select(resolver(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind() != KindModelBackend {
		t.Errorf("expected model backend, got %s", p.Kind())
	}
	if Module(p) != "auth/model" {
		t.Errorf("Module = %s", Module(p))
	}
}

func TestSelect_Allauth(t *testing.T) {
	p, err := configured(map[string]string{"AUTH_USE_ALLAUTH": "True"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := p.(*Allauth)
	if !ok {
		t.Fatalf("expected *Allauth, got %T", p)
	}
	if a.Keycloak != nil || a.NFDIAAI != nil {
		t.Errorf("expected no social providers, got %+v", a)
	}

	c := p.Contribute()
	if len(c.InstalledApps) != 3 || c.InstalledApps[0] != "allauth" {
		t.Errorf("unexpected apps: %v", c.InstalledApps)
	}
	if c.Extra["ACCOUNT_SIGNUP"] != false || c.Extra["SOCIALACCOUNT_AUTO_SIGNUP"] != true {
		t.Errorf("unexpected account flags: %v", c.Extra)
	}
	if _, ok := c.Extra["SOCIALACCOUNT_PROVIDERS"]; ok {
		t.Error("did not expect SOCIALACCOUNT_PROVIDERS without providers")
	}
}

func TestSelect_KeycloakImpliesAllauth(t *testing.T) {
	p, err := configured(map[string]string{
		"AUTH_USE_KEYCLOAK":   "TRUE",
		"KEYCLOAK_SERVER_URL": "https://sso.example.org/",
		"KEYCLOAK_REALM":      "rdmo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := p.(*Allauth)
	if !ok || a.Keycloak == nil {
		t.Fatalf("expected allauth with keycloak, got %#v", p)
	}
	if got := a.Keycloak.DiscoveryURL(); got != "https://sso.example.org/realms/rdmo" {
		t.Errorf("DiscoveryURL = %s", got)
	}

	c := p.Contribute()
	last := c.InstalledApps[len(c.InstalledApps)-1]
	if last != "allauth.socialaccount.providers.keycloak" {
		t.Errorf("expected keycloak app last, got %s", last)
	}
	providers, ok := c.Extra["SOCIALACCOUNT_PROVIDERS"].(map[string]any)
	if !ok {
		t.Fatalf("missing SOCIALACCOUNT_PROVIDERS: %v", c.Extra)
	}
	kc := providers["keycloak"].(map[string]any)
	if kc["KEYCLOAK_REALM"] != "rdmo" {
		t.Errorf("unexpected keycloak settings: %v", kc)
	}
}

func TestSelect_KeycloakRequiresRealm(t *testing.T) {
	_, err := configured(map[string]string{
		"AUTH_USE_KEYCLOAK":   "true",
		"KEYCLOAK_SERVER_URL": "https://sso.example.org",
	})
	var missing *envvar.MissingConfigurationError
	if !errors.As(err, &missing) || missing.Key != "KEYCLOAK_REALM" {
		t.Fatalf("expected missing KEYCLOAK_REALM, got %v", err)
	}
}

func TestSelect_NFDIAAI(t *testing.T) {
	p, err := configured(map[string]string{
		"AUTH_USE_NFDI_AAI":   "true",
		"NFDI_AAI_SERVER_URL": "https://aai.example.org",
		"NFDI_AAI_CLIENT_ID":  "rdmo-client",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := p.(*Allauth)
	if a.NFDIAAI == nil || a.NFDIAAI.ClientID != "rdmo-client" {
		t.Fatalf("unexpected NFDI AAI provider: %+v", a.NFDIAAI)
	}
	providers := p.Contribute().Extra["SOCIALACCOUNT_PROVIDERS"].(map[string]any)
	if _, ok := providers["openid_connect"]; !ok {
		t.Errorf("expected openid_connect provider, got %v", providers)
	}
}

func TestSelect_ReadsOnlyFlags(t *testing.T) {
	r := resolver(map[string]string{"AUTH_USE_KEYCLOAK": "True", "AUTH_USE_LDAP": "False"})
	p, err := Select(r)
	if err != nil {
		t.Fatalf("Select should not need provider keys: %v", err)
	}
	a, ok := p.(*Allauth)
	if !ok || !a.UseKeycloak || a.Keycloak != nil {
		t.Fatalf("expected unconfigured allauth with keycloak flag, got %#v", p)
	}
	for _, res := range r.Trace() {
		if res.Name == "KEYCLOAK_SERVER_URL" || res.Name == "KEYCLOAK_REALM" {
			t.Errorf("Select resolved %s", res.Name)
		}
	}

	var missing *envvar.MissingConfigurationError
	if err := p.Configure(r); !errors.As(err, &missing) || missing.Key != "KEYCLOAK_SERVER_URL" {
		t.Fatalf("expected missing KEYCLOAK_SERVER_URL from Configure, got %v", err)
	}
}

func TestConfigure_NFDIAAIFlagOnly(t *testing.T) {
	p, err := configured(map[string]string{"AUTH_USE_ALLAUTH": "True", "AUTH_USE_NFDI_AAI": "True"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := p.(*Allauth)
	if a.NFDIAAI != nil {
		t.Errorf("expected no OpenID Connect app without server and client, got %+v", a.NFDIAAI)
	}
	c := p.Contribute()
	if len(c.InstalledApps) != 3 {
		t.Errorf("expected plain allauth apps, got %v", c.InstalledApps)
	}
	if _, ok := c.Extra["SOCIALACCOUNT_PROVIDERS"]; ok {
		t.Error("did not expect SOCIALACCOUNT_PROVIDERS")
	}
}

func TestSelect_ShibbolethAndAllauthAreExclusive(t *testing.T) {
	for _, flag := range []string{"AUTH_USE_ALLAUTH", "AUTH_USE_KEYCLOAK", "AUTH_USE_NFDI_AAI"} {
		t.Run(flag, func(t *testing.T) {
			_, err := Select(resolver(map[string]string{
				"AUTH_USE_SHIBBOLETH": "true",
				flag:                  "true",
			}))
			if !errors.Is(err, envvar.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestSelect_Shibboleth(t *testing.T) {
	p, err := Select(resolver(map[string]string{"AUTH_USE_SHIBBOLETH": "TRUE"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind() != KindShibboleth {
		t.Fatalf("expected shibboleth, got %s", p.Kind())
	}
	c := p.Contribute()
	if c.LoginURL != "/Shibboleth.sso/Login?target=/projects" || c.LogoutURL != "/Shibboleth.sso/Logout" {
		t.Errorf("unexpected URLs: %s %s", c.LoginURL, c.LogoutURL)
	}
	if len(c.Middleware) != 1 || c.Middleware[0].After != AuthenticationMiddlewareClass {
		t.Errorf("unexpected middleware: %+v", c.Middleware)
	}
	if c.ProfileUpdate == nil || *c.ProfileUpdate {
		t.Error("expected PROFILE_UPDATE forced off")
	}
	attrs := c.Extra["SHIBBOLETH_ATTRIBUTE_MAP"].(map[string]any)
	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %v", attrs)
	}
}

func TestSelect_LDAPWins(t *testing.T) {
	p, err := configured(map[string]string{
		"AUTH_USE_LDAP":              "true",
		"AUTH_USE_ALLAUTH":           "true",
		"AUTH_LDAP_SERVER_URI":       "ldap://ldap.example.org",
		"AUTH_LDAP_BIND_DN":          "cn=admin,dc=example,dc=org",
		"AUTH_LDAP_BIND_PASSWORD":    "admin",
		"AUTH_LDAP_USER_SEARCH_BASE": "dc=example,dc=org",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, ok := p.(*LDAP)
	if !ok {
		t.Fatalf("expected *LDAP, got %T", p)
	}
	if l.UserFilter != "(uid=%(user)s)" {
		t.Errorf("unexpected default filter %q", l.UserFilter)
	}
	c := p.Contribute()
	if c.Backends[0].Before != ModelBackendClass {
		t.Errorf("LDAP backend should be inserted before ModelBackend: %+v", c.Backends)
	}
}

func TestSelect_LDAPRejectsBadURI(t *testing.T) {
	_, err := configured(map[string]string{
		"AUTH_USE_LDAP":              "true",
		"AUTH_LDAP_SERVER_URI":       "ldap.example.org",
		"AUTH_LDAP_BIND_DN":          "cn=admin",
		"AUTH_LDAP_BIND_PASSWORD":    "admin",
		"AUTH_LDAP_USER_SEARCH_BASE": "dc=example",
	})
	if !errors.Is(err, envvar.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
