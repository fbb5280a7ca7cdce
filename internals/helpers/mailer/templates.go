package mailer

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

// Contact is the submission data the templates render.
type Contact struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	Phone     string
	Company   string
	CreatedAt time.Time
}

var (
	notificationTpl = template.Must(template.New("notification").Parse(`<h2>New contact form submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
{{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap">{{.Message}}</p>
<p><small>Received {{.CreatedAt.Format "2006-01-02 15:04 MST"}}</small></p>`))

	confirmationTpl = template.Must(template.New("confirmation").Parse(`<h2>Thank you for reaching out, {{.Name}}!</h2>
<p>I have received your message and will get back to you as soon as possible.</p>
<p><strong>Your message:</strong></p>
<blockquote style="white-space: pre-wrap">{{.Message}}</blockquote>`))

	replyTpl = template.Must(template.New("reply").Parse(`<p>Hi {{.Name}},</p>
<p style="white-space: pre-wrap">{{.Reply}}</p>
<hr>
<p><small>In reply to your message "{{.Subject}}":</small></p>
<blockquote style="white-space: pre-wrap">{{.Message}}</blockquote>`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Notification is sent to the site owner for every new submission.
func Notification(to string, c Contact) (Message, error) {
	html, err := render(notificationTpl, c)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ReplyTo: c.Email,
		Subject: oneLine("New Contact Form Submission: " + c.Subject),
		Text:    "From: " + c.Name + " <" + c.Email + ">\n\n" + c.Message,
		HTML:    html,
	}, nil
}

// Confirmation acknowledges the submission to its author.
func Confirmation(c Contact) (Message, error) {
	html, err := render(confirmationTpl, c)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      c.Email,
		Subject: "Thank you for contacting me",
		Text:    "Hi " + c.Name + ",\n\nI have received your message and will get back to you soon.",
		HTML:    html,
	}, nil
}

// Reply carries the owner's answer back to the submitter.
func Reply(c Contact, reply string) (Message, error) {
	html, err := render(replyTpl, struct {
		Contact
		Reply string
	}{c, reply})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      c.Email,
		Subject: oneLine("Re: " + c.Subject),
		Text:    "Hi " + c.Name + ",\n\n" + reply,
		HTML:    html,
	}, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
