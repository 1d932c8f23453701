package settings

import "strings"

// SanitizeURL collapses repeated slashes in u while keeping the "//" that
// follows a scheme, so "https://example.org//rdmo//" becomes
// "https://example.org/rdmo/".
func SanitizeURL(u string) string {
	prefix := ""
	if i := strings.Index(u, "://"); i > 0 {
		prefix, u = u[:i+3], u[i+3:]
	}
	var b strings.Builder
	b.Grow(len(u))
	for i := 0; i < len(u); i++ {
		if u[i] == '/' && i > 0 && u[i-1] == '/' {
			continue
		}
		b.WriteByte(u[i])
	}
	return prefix + b.String()
}

// prefix applies BASE_URL to the URL settings and cookie paths.
func (u *URLs) prefix(base string) {
	u.Login = SanitizeURL(base + u.Login)
	u.LoginRedirect = SanitizeURL(base + u.LoginRedirect)
	u.Logout = SanitizeURL(base + u.Logout)
	u.AccountLogoutRedirect = SanitizeURL(base)
	u.Media = SanitizeURL(base + u.Media)
	u.Static = SanitizeURL(base + u.Static)
	u.CSRFCookiePath = SanitizeURL(base + "/")
	u.LanguageCookiePath = SanitizeURL(base + "/")
	u.SessionCookiePath = SanitizeURL(base + "/")
}
