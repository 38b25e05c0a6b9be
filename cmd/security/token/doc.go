// Package token issues and verifies the signed bearer tokens handed out at
// signup and login. Tokens are HS256 JWTs carrying the subject's identity
// claims; session records bind the issued token string but never interpret it.
package token
