// Package signup implements the account-creation workflow behind the
// Skycast signup screen.
//
// The package owns the form state, derives its validity, runs the
// create-account call against an authprovider.Provider and classifies the
// result into a Status the presentation layer renders. It knows nothing
// about layout or rendering; a screen feeds it field edits and reads State
// snapshots or Observer notifications back.
//
// # Overview
//
// The workflow provides:
//   - Form fields: full name, email, password, confirmation, terms consent
//   - Derived validity recomputed on every read
//   - A submission guard allowing one in-flight request at a time
//   - Result classification (confirmation email sent vs. signed in)
//   - Success and failure feedback signals
//   - A navigate-to-login signal once a success is acknowledged
//
// # Basic Usage
//
//	client := authclient.New(baseURL, anonKey)
//	wf := signup.NewWorkflow(client,
//		signup.WithFeedback(haptics),
//		signup.WithObserver(screen),
//	)
//
//	wf.SetFullName("Jane Doe")
//	wf.SetEmail("jane@example.com")
//	wf.SetPassword("secret1")
//	wf.SetConfirmPassword("secret1")
//	wf.SetAgreeToTerms(true)
//
//	if wf.Submit(ctx) {
//		wf.Wait()
//	}
//
//	state := wf.State()
//	if state.SuccessMessage != "" {
//		wf.AcknowledgeSuccess() // raises OnNavigateToLogin
//	}
//
// # Validation
//
// The email rule is deliberately weak: an address is valid when it contains
// both '@' and '.'. Passwords must be non-empty and equal to the
// confirmation. The full name must be non-blank after trimming, and the
// terms must be accepted. An invalid form is not an error; Submit simply
// does nothing.
//
// # Status Transitions
//
//	Idle       --Submit [valid]-----------> Submitting
//	Submitting --provider ok, no session--> Succeeded (requires confirmation)
//	Submitting --provider ok, session-----> Succeeded
//	Submitting --provider error-----------> Failed
//	Succeeded  --AcknowledgeSuccess-------> Idle (+ navigate to login)
//	Failed     --Submit [valid]-----------> Submitting
//
// # Threading
//
// A Workflow has one owner. The provider call runs on its own goroutine and
// its completion goes through the dispatcher set by WithDispatcher, which a
// UI host uses to hop back onto its event loop. Field edits during a
// request never cancel it.
package signup
