package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/go-user-accounts/config"
)

// Option pattern
type Option func(*EmailData)

func WithActivationCode(code string) Option { return func(d *EmailData) { d.ActivationCode = code } }
func WithActivateURL(url string) Option     { return func(d *EmailData) { d.ActivateURL = url } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return WithExpiresAt(time.Now().Add(dur))
}

// NewBaseEmailData fills the branding fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		LogoURL:     cfg.LogoURL,
		SupportURL:  cfg.SupportURL,

		ActivateURL: cfg.ActivateAccountURL,
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = email
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// FromContext builds template data from a mail job context as produced by the
// account service ({name, activationCode}).
func FromContext(cfg *config.Config, to string, ctx map[string]any) EmailData {
	name := stringOf(ctx["name"])
	code := stringOf(ctx["activationCode"])
	return NewBaseEmailData(cfg, name, to,
		WithActivationCode(code),
		WithExpiresIn(cfg.ActivationCodeTTL),
	)
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
