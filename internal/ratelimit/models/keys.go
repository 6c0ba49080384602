package models

import "strings"

// Key prefixes namespace each logical use of the shared counter keyspace so
// that limiters and the lockout tracker can never collide.
const (
	PrefixAPI           = "rl:api"
	PrefixAuth          = "rl:auth"
	PrefixPasswordReset = "rl:pwreset"
	PrefixRegistration  = "rl:register"
	PrefixLockout       = "lockout"
)

// CounterKey joins a limiter prefix with a client key.
func CounterKey(prefix, clientKey string) string {
	return prefix + ":" + clientKey
}

// LockoutKey builds the storage key for an identifier. Identifiers are
// case-insensitive (typically email addresses), so the key is lowercased.
func LockoutKey(identifier string) string {
	return PrefixLockout + ":" + strings.ToLower(strings.TrimSpace(identifier))
}
