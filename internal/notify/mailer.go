// internal/notify/mailer.go

// Package notify sends pitch deck outlines by email through SES.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"idea-lab/internal/common/aws"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/validation"
	"idea-lab/internal/models"
)

var (
	ErrDisabled         = errors.New("EMAIL_DISABLED")
	ErrInvalidRecipient = errors.New("INVALID_RECIPIENT")
	ErrSendFailed       = errors.New("NOTIFICATION_SEND_FAILED")
)

var deckHTML = template.Must(template.New("deck").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`<html><body>
<h1>{{.Idea.BusinessTitle}}</h1>
<p>{{.Idea.Description}}</p>
{{range $i, $s := .Deck.Slides}}<h2>{{inc $i}}. {{$s.Title}}</h2>
{{if $s.Subtitle}}<p><em>{{$s.Subtitle}}</em></p>
{{end}}<ul>{{range $s.Bullets}}<li>{{.}}</li>{{end}}</ul>
{{end}}</body></html>`))

// Mailer emails pitch deck outlines.
type Mailer struct {
	client  aws.SESAPI
	from    string
	enabled bool
	logger  logger.Logger
}

func NewMailer(client aws.SESAPI, from string, enabled bool, log logger.Logger) *Mailer {
	return &Mailer{
		client:  client,
		from:    from,
		enabled: enabled && client != nil,
		logger:  log.With(map[string]interface{}{"component": "mailer"}),
	}
}

// SendPitchDeck emails the deck outline for idea to one recipient.
func (m *Mailer) SendPitchDeck(ctx context.Context, to string, idea *models.BusinessIdea, deck *models.PitchDeck) error {
	if !m.enabled {
		return ErrDisabled
	}
	to = strings.TrimSpace(to)
	if !validation.ValidateEmail(to) {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	if idea == nil || deck.IsEmpty() {
		return fmt.Errorf("%w: no pitch deck to send", ErrSendFailed)
	}

	var html bytes.Buffer
	if err := deckHTML.Execute(&html, struct {
		Idea *models.BusinessIdea
		Deck *models.PitchDeck
	}{idea, deck}); err != nil {
		return fmt.Errorf("%w: render: %v", ErrSendFailed, err)
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(m.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String("Pitch deck: " + idea.BusinessTitle), Charset: awssdk.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: awssdk.String(html.String()), Charset: awssdk.String("UTF-8")},
				Text: &types.Content{Data: awssdk.String(plainText(idea, deck)), Charset: awssdk.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: ses: %v", ErrSendFailed, err)
	}

	m.logger.Info("pitch deck sent", map[string]interface{}{
		"ideaId":    idea.ID,
		"messageId": awssdk.ToString(out.MessageId),
	})
	return nil
}

func plainText(idea *models.BusinessIdea, deck *models.PitchDeck) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n", idea.BusinessTitle, idea.Description)
	for i, s := range deck.Slides {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, s.Title)
		if s.Subtitle != "" {
			fmt.Fprintf(&b, "   %s\n", s.Subtitle)
		}
		for _, bullet := range s.Bullets {
			fmt.Fprintf(&b, "   - %s\n", bullet)
		}
	}
	return b.String()
}
