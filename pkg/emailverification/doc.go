// Package emailverification issues and redeems the single-use tokens behind
// signup confirmation links.
//
// Issue stores a token, renders the confirmation link and hands it to a
// Sender (normally a notification.NotificationManager). Confirm checks that
// the token exists, is unused and unexpired, marks it used and retires the
// user's other outstanding tokens. Marking the account itself as confirmed
// is left to the caller.
//
// Tokens live in a Repository: InMemoryRepository for development and tests,
// PostgresRepository (pgx) otherwise. Schema holds the table definition.
package emailverification
