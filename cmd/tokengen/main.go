// Command tokengen mints an access token the way cmd/authdev does, for
// calling protected endpoints by hand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/skycast-auth/pkg/tokengenerator"
)

func main() {
	secret := flag.String("secret", "super-secret-jwt-token-with-at-least-32-characters", "Secret key for signing the token")
	issuer := flag.String("issuer", "http://localhost:9999/auth/v1", "Issuer of the token")
	subject := flag.String("subject", "", "User ID (random when empty)")
	email := flag.String("email", "jane@example.com", "Email claim")
	fullName := flag.String("name", "", "full_name user metadata")
	sessionID := flag.String("session", "", "Session ID (random when empty)")
	expiry := flag.Duration("expiry", time.Hour, "Token expiry duration (e.g., 30m, 1h, 24h)")
	outputFormat := flag.String("format", "compact", "Output format: compact, full, or debug")
	flag.Parse()

	sub := tokengenerator.Subject{
		UserID:    parseOrNew(*subject, "subject"),
		Email:     *email,
		SessionID: parseOrNew(*sessionID, "session"),
	}
	if *fullName != "" {
		sub.Metadata = map[string]any{"full_name": *fullName}
	}

	tokenGen := tokengenerator.NewJwtTokenGenerator(*secret, *issuer, *expiry)
	tokenStr, expiresAt, err := tokenGen.GenerateAccessToken(sub)
	if err != nil {
		slog.Error("Failed to generate token", "err", err)
		fmt.Fprintf(os.Stderr, "Error: Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "compact":
		fmt.Println(tokenStr)
	case "full":
		fmt.Printf("Token: %s\nExpires: %s\n", tokenStr, expiresAt.Format(time.RFC3339))
	case "debug":
		claims, err := tokenGen.ParseAccessToken(tokenStr)
		if err != nil {
			slog.Error("Failed to parse generated token", "err", err)
			fmt.Fprintf(os.Stderr, "Error: Failed to parse generated token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("=== Token Information ===\n")
		fmt.Printf("Token: %s\n\n", tokenStr)
		fmt.Printf("=== Token Claims ===\n")
		claimsJSON, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Printf("%s\n\n", claimsJSON)
		fmt.Printf("Expires: %s\n", expiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown output format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

func parseOrNew(value, name string) uuid.UUID {
	if value == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -%s must be a UUID: %v\n", name, err)
		os.Exit(1)
	}
	return id
}
