// Package account implements the credential flows: signup and login.
//
// Both flows end the same way: a signed bearer token is issued, a session is
// created bound to that token, and the caller gets back the user record plus
// the session handle. Login failures are deliberately uniform; a missing
// account, a wrong password, and a disabled account all surface as
// ErrUnauthorized, and the missing-account path still burns a hash
// verification so response timing does not reveal which one it was.
package account
