// Package authprovider defines the narrow contract between the account
// workflows and the remote authentication backend.
//
// A Provider creates accounts and returns an Outcome whose Session is nil
// when the backend requires email confirmation. An Authenticator signs
// existing accounts in. Both report failures as *Error, whose Message is a
// human-readable description intended to be shown to the user verbatim.
//
//	outcome, err := provider.CreateAccount(ctx, "jane@example.com", "secret1",
//		map[string]string{authprovider.MetadataFullName: "Jane Doe"})
//	if err != nil {
//		fmt.Println(authprovider.Describe(err))
//		return
//	}
//	if !outcome.HasSession() {
//		// confirmation email sent
//	}
//
// pkg/authclient implements both interfaces over HTTP.
package authprovider
