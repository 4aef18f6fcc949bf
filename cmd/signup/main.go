// Command signup creates a Skycast account from the terminal. It drives the
// same signup workflow the app screen uses, against a GoTrue-compatible
// backend (the hosted service or cmd/authdev).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/skycast-auth/pkg/authclient"
	"github.com/tendant/skycast-auth/pkg/config"
	"github.com/tendant/skycast-auth/pkg/feedback"
	"github.com/tendant/skycast-auth/pkg/signup"
)

type Config struct {
	Provider config.ProviderConfig
	Messages config.MessagesConfig
}

func main() {
	fullName := flag.String("name", "", "Full name")
	email := flag.String("email", "", "Email address")
	password := flag.String("password", "", "Password")
	confirm := flag.String("confirm", "", "Password confirmation (defaults to -password)")
	agree := flag.Bool("agree", false, "Agree to the terms of service")
	verbose := flag.Bool("v", false, "Log requests")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	config.LoadEnvFile()
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	client := authclient.New(cfg.Provider.URL, cfg.Provider.AnonKey,
		authclient.WithTimeout(cfg.Provider.Timeout),
		authclient.WithRedirectTo(cfg.Provider.RedirectTo),
	)

	workflow := signup.NewWorkflow(client,
		signup.WithMessages(cfg.Messages.ToMessages()),
		signup.WithFeedback(feedback.Bell{W: os.Stdout}),
		signup.WithObserver(&statusPrinter{}),
		signup.WithObserver(signup.NewLoggingObserver(nil)),
	)

	if *confirm == "" {
		*confirm = *password
	}
	workflow.SetFullName(*fullName)
	workflow.SetEmail(*email)
	workflow.SetPassword(*password)
	workflow.SetConfirmPassword(*confirm)
	workflow.SetAgreeToTerms(*agree)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !workflow.Submit(ctx) {
		for _, problem := range formProblems(workflow.Form()) {
			fmt.Fprintln(os.Stderr, problem)
		}
		os.Exit(2)
	}
	workflow.Wait()

	state := workflow.State()
	if state.Status.Kind != signup.StatusSucceeded {
		os.Exit(1)
	}

	workflow.AcknowledgeSuccess()
	if workflow.ConsumeNavigateToLogin() {
		fmt.Printf("Next: login -email %s\n", state.Email)
	}
}

// statusPrinter prints each status transition once
type statusPrinter struct {
	last signup.StatusKind
}

func (p *statusPrinter) OnStateChanged(state signup.State) {
	if state.Status.Kind == p.last {
		return
	}
	p.last = state.Status.Kind

	switch state.Status.Kind {
	case signup.StatusSubmitting:
		fmt.Println("Creating account...")
	case signup.StatusSucceeded:
		fmt.Println(state.SuccessMessage)
	case signup.StatusFailed:
		fmt.Fprintln(os.Stderr, "Signup failed:", state.ErrorMessage)
	}
}

func (p *statusPrinter) OnNavigateToLogin() {}

func formProblems(form signup.Form) []string {
	var problems []string
	if strings.TrimSpace(form.FullName) == "" {
		problems = append(problems, "-name is required")
	}
	if !form.IsEmailValid() {
		problems = append(problems, "-email must be a valid email address")
	}
	if !form.IsPasswordMatch() {
		problems = append(problems, "-password is required and must match -confirm")
	}
	if !form.AgreeToTerms {
		problems = append(problems, "-agree is required")
	}
	return problems
}
