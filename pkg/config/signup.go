package config

import "time"

// SignupConfig controls account creation on the dev backend
type SignupConfig struct {
	// Persistence is memory, sqlite or postgres
	Persistence        string        `env:"SKYCAST_PERSISTENCE" env-default:"memory"`
	SQLitePath         string        `env:"SKYCAST_SQLITE_PATH" env-default:"skycast-auth.db"`
	Prefix             string        `env:"SKYCAST_API_PREFIX" env-default:"/auth/v1"`
	SiteURL            string        `env:"SKYCAST_SITE_URL" env-default:"http://localhost:9999"`
	Autoconfirm        bool          `env:"SKYCAST_MAILER_AUTOCONFIRM" env-default:"false"`
	Disabled           bool          `env:"SKYCAST_DISABLE_SIGNUP" env-default:"false"`
	MinPasswordLength  int           `env:"SKYCAST_PASSWORD_MIN_LENGTH" env-default:"6"`
	ConfirmationExpiry time.Duration `env:"SKYCAST_CONFIRMATION_EXPIRY" env-default:"24h"`

	// Redirect targets accepted besides SiteURL, comma separated, e.g.
	// "skycast://login"
	AdditionalRedirectURLs []string `env:"SKYCAST_URI_ALLOW_LIST" env-separator:","`
}

// RedirectURLs lists the addresses confirmation links may redirect to
func (s SignupConfig) RedirectURLs() []string {
	return append([]string{s.SiteURL}, s.AdditionalRedirectURLs...)
}

// VerifyURL is the public address of the verify endpoint
func (s SignupConfig) VerifyURL() string {
	return s.SiteURL + s.Prefix + "/verify"
}
