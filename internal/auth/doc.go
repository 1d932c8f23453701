// Package auth selects the single authentication provider of a deployment
// from the AUTH_USE_* flags and describes what it contributes to the
// composed settings: installed apps, authentication backends, middleware,
// login URLs and provider-specific settings.
package auth
