package delivery

import (
	"net/http"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/ledger"
	"github.com/aretw0/leadchat/pkg/ports"
)

// Deps are the collaborators sinks may need. Zero values pick defaults.
type Deps struct {
	HTTPClient  *http.Client
	Ledger      *ledger.Ledger
	EmailSender EmailSender
}

// FromConfig builds the enabled sinks of cfg in a fixed order:
// webhook, spreadsheet, local backup, email.
func FromConfig(cfg *config.Config, deps Deps) []ports.LeadSink {
	in := cfg.Integrations
	var sinks []ports.LeadSink

	if in.Webhook.Enabled && in.Webhook.URL != "" {
		sinks = append(sinks, NewWebhookSink(in.Webhook, deps.HTTPClient))
	}
	if in.GoogleSheets.Enabled && in.GoogleSheets.ScriptURL != "" {
		sinks = append(sinks, NewSheetsSink(in.GoogleSheets, deps.HTTPClient))
	}
	if in.Backup.Enabled && deps.Ledger != nil {
		sinks = append(sinks, &BackupSink{
			List: ledger.NewBackupList(deps.Ledger, in.Backup.Key, cfg.Advanced.MaxStoredLeads),
		})
	}
	if in.Email.Enabled {
		sinks = append(sinks, NewEmailSink(in.Email, deps.EmailSender))
	}
	return sinks
}
