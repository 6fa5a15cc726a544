package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var reportTemplate = template.Must(template.New("dispatch_report").Parse(`<h2>Call dispatch {{if .FailureReason}}failed{{else}}finished{{end}}</h2>
<p>Job: {{.JobID}}<br>Source: {{.Source}}{{if .ContactListID}} (list {{.ContactListID}}){{end}}<br>Finished at: {{.FinishedAt.Format "2006-01-02 15:04:05 MST"}}</p>
{{if .FailureReason}}<p><strong>{{.FailureReason}}</strong></p>{{else}}<ul>
<li>Total: {{.Total}}</li>
<li>Dispatched: {{.SuccessCount}}</li>
<li>Failed: {{.FailedCount}}</li>
<li>Skipped (already completed): {{.SkippedCount}}</li>
</ul>{{end}}
{{if .Errors}}<p>First errors:</p><ul>{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}
`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func renderReport(report DispatchReport) (string, error) {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, report); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) SendDispatchReport(to string, report DispatchReport) error {
	body, err := renderReport(report)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Call dispatch report: %d dispatched, %d failed", report.SuccessCount, report.FailedCount))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report over SMTP: %w", err)
	}
	return nil
}
