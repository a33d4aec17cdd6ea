// Package jwt inspects engine-issued access tokens and validates the public key
// material handed to the engine at initialization.
//
// Access tokens are parsed WITHOUT signature verification: the engine and its
// server own token trust, this package only surfaces claims (subject, expiry) to the
// application so it can schedule refreshes or display the signed-in user.
package jwt
