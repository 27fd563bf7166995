package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/validate"
	"github.com/resendlabs/resend-go"
)

// EmailSender is the part of the Resend client used by EmailSink.
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (resend.SendEmailResponse, error)
}

// EmailSink notifies a mailbox of every new lead through the Resend API.
type EmailSink struct {
	sender  EmailSender
	from    string
	to      []string
	subject string
}

// NewEmailSink builds an EmailSink. A nil sender creates a Resend client from cfg.APIKey.
func NewEmailSink(cfg config.Email, sender EmailSender) *EmailSink {
	if sender == nil {
		sender = resend.NewClient(cfg.APIKey).Emails
	}
	return &EmailSink{sender: sender, from: cfg.From, to: cfg.To, subject: cfg.Subject}
}

func (s *EmailSink) Name() string { return "email" }

// Deliver sends the notification. The Resend client takes no context, so a
// cancelled ctx is only honoured before the call.
func (s *EmailSink) Deliver(ctx context.Context, lead domain.LeadRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := renderLeadEmail(lead)
	if err != nil {
		return err
	}

	_, err = s.sender.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      s.to,
		Subject: s.subjectFor(lead),
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send lead email via Resend: %w", err)
	}
	return nil
}

func (s *EmailSink) subjectFor(lead domain.LeadRecord) string {
	subject := s.subject
	if subject == "" {
		subject = "New lead: {userName}"
	}
	return strings.NewReplacer(
		"{userName}", lead.Name,
		"{userEmail}", lead.Email,
		"{userPhone}", validate.FormatPhone(lead.Phone),
	).Replace(subject)
}

var leadEmail = template.Must(template.New("lead").Parse(`<h2>{{.Name}}</h2>
<ul>
  <li><strong>E-mail:</strong> {{.Email}}</li>
  <li><strong>WhatsApp:</strong> {{.Phone}}</li>
  {{- if .PageURL}}
  <li><strong>Page:</strong> {{.PageURL}}</li>
  {{- end}}
  {{- range $k, $v := .UTM}}
  <li><strong>{{$k}}:</strong> {{$v}}</li>
  {{- end}}
  <li><strong>Visits:</strong> {{.Visits}}</li>
  <li><strong>Consent:</strong> {{if .Consent}}yes{{else}}no{{end}}</li>
</ul>
<p><small>Lead {{.ID}}, visitor {{.VisitorID}}</small></p>
`))

func renderLeadEmail(lead domain.LeadRecord) (string, error) {
	var buf bytes.Buffer
	err := leadEmail.Execute(&buf, map[string]any{
		"ID":        lead.ID,
		"VisitorID": lead.VisitorID,
		"Name":      lead.Name,
		"Email":     lead.Email,
		"Phone":     validate.FormatPhone(lead.Phone),
		"PageURL":   lead.PageURL,
		"UTM":       lead.UTM,
		"Visits":    lead.Tracking.VisitCount,
		"Consent":   lead.PrivacyAccepted,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render lead email: %w", err)
	}
	return buf.String(), nil
}
