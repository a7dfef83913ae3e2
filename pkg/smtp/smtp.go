package smtp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// Client sends transactional mail through an SMTP relay.
type Client struct {
	dialer *gomail.Dialer
	from   string
	domain string
	logger *types.Logger
}

func NewClient(dialer *gomail.Dialer, from, domain string, logger *types.Logger) *Client {
	return &Client{
		dialer: dialer,
		from:   from,
		domain: domain,
		logger: logger,
	}
}

// SendLoginCode mails a one-time sign-in code.
func (c *Client) SendLoginCode(to string, code string) error {
	msg := newLoginCodeMessage(c.from, c.domain, to, code, time.Now())
	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send login code to %s: %w", to, err)
	}
	c.logger.Infof("Login code sent (to=%s)", to)
	return nil
}

func newLoginCodeMessage(from, domain, to, code string, now time.Time) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("Message-ID", generateMessageID(domain))
	msg.SetHeader("Date", now.Format(time.RFC1123Z))
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Jooksuklubid sign-in code")
	msg.SetBody("text/plain", fmt.Sprintf("Your sign-in code is %s. It expires in 10 minutes.", code))
	msg.AddAlternative("text/html", fmt.Sprintf("<p>Your sign-in code is <b>%s</b>.</p><p>It expires in 10 minutes.</p>", code))
	return msg
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}

// LogClient writes login codes to the log instead of mailing them. Used in development.
type LogClient struct {
	logger *types.Logger
}

func NewLogClient(logger *types.Logger) *LogClient {
	return &LogClient{logger: logger}
}

func (c *LogClient) SendLoginCode(to string, code string) error {
	c.logger.Infof("Login code for %s: %s", to, code)
	return nil
}
