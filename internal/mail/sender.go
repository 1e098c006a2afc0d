package mail

import (
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers transactional mail over SMTP. It satisfies auth.Mailer.
type Sender struct {
	client *gomail.Client
	from   string
}

var sendFn = func(c *gomail.Client, m *gomail.Msg) error {
	return c.DialAndSend(m)
}

func NewSender(host string, port int, user, pass, from string) (*Sender, error) {
	opts := []gomail.Option{gomail.WithPort(port)}
	if user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(user),
			gomail.WithPassword(pass),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Sender{client: client, from: from}, nil
}

func (s *Sender) SendPasswordReset(to, link string) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}
	m.Subject("Reset your password")
	m.SetBodyString(gomail.TypeTextPlain,
		"A password reset was requested for your account.\n\n"+
			"Follow this link within the next hour to choose a new password:\n\n"+
			link+"\n\n"+
			"If you did not request this, you can ignore this email.\n")
	return sendFn(s.client, m)
}
