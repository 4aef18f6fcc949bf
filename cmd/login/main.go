// Command login signs in to Skycast from the terminal and prints the
// session it receives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/skycast-auth/pkg/authclient"
	"github.com/tendant/skycast-auth/pkg/config"
	"github.com/tendant/skycast-auth/pkg/feedback"
	"github.com/tendant/skycast-auth/pkg/login"
)

type Config struct {
	Provider config.ProviderConfig
}

func main() {
	email := flag.String("email", "", "Email address")
	password := flag.String("password", "", "Password")
	showToken := flag.Bool("token", false, "Print the access token")
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
	)

	workflow := login.NewWorkflow(client,
		login.WithFeedback(feedback.Bell{W: os.Stdout}),
		login.WithObserver(login.LoggingObserver{}),
		login.WithObserver(login.ObserverFunc(func(state login.State) {
			if state.Status.Kind == login.StatusSubmitting {
				fmt.Println("Signing in...")
			}
		})),
	)
	workflow.SetEmail(*email)
	workflow.SetPassword(*password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !workflow.Submit(ctx) {
		fmt.Fprintln(os.Stderr, "-email must be a valid email address and -password is required")
		os.Exit(2)
	}
	workflow.Wait()

	state := workflow.State()
	if state.Status.Kind != login.StatusSignedIn {
		fmt.Fprintln(os.Stderr, "Sign in failed:", state.ErrorMessage)
		workflow.AcknowledgeError()
		os.Exit(1)
	}

	session := workflow.Session()
	name := session.User.FullName()
	if name == "" && session.User != nil {
		name = session.User.Email
	}
	fmt.Printf("Signed in as %s, session expires %s\n", name, session.Expiry().Local().Format(time.RFC1123))
	if *showToken {
		fmt.Println(session.AccessToken)
	}
}
