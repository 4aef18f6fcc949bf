// Package authserver is a local stand-in for the hosted authentication
// service. It speaks the subset of the GoTrue API the Skycast clients use,
// so the signup and login workflows can be run end to end on a laptop.
//
// Endpoints, relative to the mount point (usually /auth/v1):
//
//	POST /signup                         create an account
//	POST /token?grant_type=password      sign in
//	POST /token?grant_type=refresh_token rotate a refresh token
//	GET  /verify?token=...&type=signup   confirm an email address
//	GET  /user                           current user (bearer token)
//	POST /logout                         end the bearer token's session
//
// Errors use the GoTrue body shape ({"code", "error_code", "msg"}) so
// clients decode them the same way they decode the hosted service's.
package authserver
