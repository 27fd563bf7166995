package flow

import (
	"net/url"
	"strings"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/validate"
)

// Text resolves the chat tokens of tmpl: {profileName}, {userName}, {article},
// {thanks} and {welcome}. An empty userName falls back to ui.fallbackName.
func Text(cfg *config.Config, tmpl, userName string) string {
	if userName == "" {
		userName = cfg.UI.FallbackName
	}
	female := cfg.Profile.Gender == "female"
	return strings.NewReplacer(
		"{profileName}", cfg.Profile.Name,
		"{userName}", userName,
		"{article}", gendered(female, "a", "o"),
		"{thanks}", gendered(female, "Obrigada", "Obrigado"),
		"{welcome}", gendered(female, "Bem-vinda", "Bem-vindo"),
	).Replace(tmpl)
}

func gendered(female bool, f, m string) string {
	if female {
		return f
	}
	return m
}

// HandoffMessage resolves the pre-filled channel message against the lead.
// The phone is shown in its formatted shape.
func HandoffMessage(cfg *config.Config, lead domain.LeadRecord) string {
	phone := ""
	if lead.Phone != "" {
		phone = validate.FormatPhone(lead.Phone)
	}
	return strings.NewReplacer(
		"{userName}", lead.Name,
		"{userEmail}", lead.Email,
		"{userPhone}", phone,
	).Replace(cfg.Channel.Message)
}

// HandoffURL builds the hand-off URL of ch from the channel templates.
func HandoffURL(cfg *config.Config, ch domain.Channel, lead domain.LeadRecord) string {
	tmpl := cfg.Channel.AppURL
	if ch == domain.ChannelWeb {
		tmpl = cfg.Channel.WebURL
	}
	return strings.NewReplacer(
		"{number}", cfg.Channel.Number,
		"{text}", EncodeText(HandoffMessage(cfg, lead)),
	).Replace(tmpl)
}

// EncodeText escapes s for a query value, with spaces as %20.
func EncodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
