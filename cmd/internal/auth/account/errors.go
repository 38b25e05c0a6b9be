package account

import "errors"

// ErrUnauthorized covers every login failure: unknown email, wrong password,
// disabled account. Callers must not distinguish them.
var ErrUnauthorized = errors.New("unauthorized")
