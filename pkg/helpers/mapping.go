package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-user-accounts/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-accounts/pkg/mailer/templates"
)

// Older producers used these names for the activation email.
var templateAliases = map[string]string{
	"verify_email": mailtpl.Register,
	"activation":   mailtpl.Register,
	"activate":     mailtpl.Register,
}

// NormalizeTemplate lower-cases the template name and maps legacy aliases.
func NormalizeTemplate(job *mailer.EmailJob) {
	name := strings.ToLower(strings.TrimSpace(job.Template))
	if alias, ok := templateAliases[name]; ok {
		name = alias
	}
	job.Template = name
}

// EnsureRecipient fills an empty recipient from data["email"] and makes sure
// data is never nil.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if strings.TrimSpace(job.To) == "" {
		if v, ok := job.Data["email"]; ok {
			job.To = strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
}
