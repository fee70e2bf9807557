package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/retroconnect/idverify/internal/domain"
)

// WarningSubject is the subject line of every report update.
const WarningSubject = "Update on your recent report on RetroConnect"

var warningTemplate = template.Must(template.New("warning").Parse(`<p>Hello,</p>
<p>This is an update regarding a report on RetroConnect.</p>
<hr/>
<p><b>To the reported user ({{.ReportedUser.Username}}):</b></p>
<p>{{.Message}}</p>
<hr/>
<p><b>To the reporter ({{.Reporter.Username}}):</b></p>
<p>Thank you for your report concerning "{{.Reason}}". We have taken action on this matter by sending the above warning.</p>
<p>Thank you for helping keep our community safe.</p>
`))

// RenderWarning renders the warning body. Values are HTML escaped.
func RenderWarning(req domain.WarningRequest) (string, error) {
	var buf bytes.Buffer
	if err := warningTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render warning: %w", err)
	}
	return buf.String(), nil
}

// WarningEmail builds the message sent to the reported user, with the
// reporter in bcc when known.
func WarningEmail(from string, req domain.WarningRequest) (Email, error) {
	html, err := RenderWarning(req)
	if err != nil {
		return Email{}, err
	}

	email := Email{
		From:    from,
		To:      []string{req.ReportedUser.Email},
		Subject: WarningSubject,
		HTML:    html,
	}
	if req.Reporter.Email != "" {
		email.Bcc = []string{req.Reporter.Email}
	}
	return email, nil
}

// SendWarning renders and sends the warning e-mail.
func (c *Client) SendWarning(ctx context.Context, req domain.WarningRequest) error {
	email, err := WarningEmail(c.cfg.From, req)
	if err != nil {
		return err
	}

	id, err := c.Send(ctx, email)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "warning email sent", "email_id", id, "to", req.ReportedUser.Email)
	return nil
}
