// Package login drives the sign-in screen: it owns the email and password
// fields, decides when the form can be submitted and runs the sign-in call
// against an authprovider.Authenticator.
//
// # Basic Usage
//
//	w := login.NewWorkflow(client, login.WithFeedback(notifier))
//	w.SetEmail("jane@example.com")
//	w.SetPassword("secret1")
//	if w.Submit(ctx) {
//		w.Wait()
//	}
//	if s := w.Session(); s != nil {
//		// signed in
//	}
//
// The status model mirrors the signup workflow: Idle, Submitting, then
// SignedIn or Failed. A failure is dismissed with AcknowledgeError or by
// submitting again.
package login
