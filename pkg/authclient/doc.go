// Package authclient talks to a GoTrue-compatible auth API (the Supabase
// Auth endpoints under /auth/v1). Client implements both
// authprovider.Provider and authprovider.Authenticator.
//
//	client := authclient.New("https://xyz.supabase.co", anonKey,
//		authclient.WithRedirectTo("skycast://login"),
//	)
//	outcome, err := client.CreateAccount(ctx, email, password, map[string]string{"full_name": name})
//
// Error responses are decoded into *authprovider.Error so that the message
// the service sends is what the user sees.
package authclient
