// Package password hashes and verifies credential secrets with Argon2id.
//
// Hashes are stored in the PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$key), so cost parameters travel
// with each hash and old hashes stay verifiable after a cost bump. Verify
// treats the stored string as untrusted and refuses parameters far above
// the configured ceiling.
package password
