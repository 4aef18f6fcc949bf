package config

import "github.com/tendant/skycast-auth/pkg/signup"

// MessagesConfig overrides the texts shown after a successful signup
type MessagesConfig struct {
	EmailSentPrefix string `env:"SKYCAST_MSG_EMAIL_SENT_PREFIX" env-default:"We've sent a confirmation link to "`
	EmailSentSuffix string `env:"SKYCAST_MSG_EMAIL_SENT_SUFFIX" env-default:". Please check your inbox to activate your account."`
	SuccessMessage  string `env:"SKYCAST_MSG_SIGNUP_SUCCESS" env-default:"Account created successfully!"`
}

// ToMessages converts the config to signup.Messages
func (m MessagesConfig) ToMessages() signup.Messages {
	return signup.Messages{
		EmailSentPrefix: m.EmailSentPrefix,
		EmailSentSuffix: m.EmailSentSuffix,
		SuccessMessage:  m.SuccessMessage,
	}
}
