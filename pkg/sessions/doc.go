// Package sessions tracks refresh sessions for the dev auth backend.
//
// A Session is created on sign-in, carries a rotating refresh token and is
// referenced from access tokens by its ID. Sessions are stored in a
// Repository: InMemoryRepository or RedisRepository (go-redis), where keys
// expire together with the session.
package sessions
