package mailingservices

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	Client *mailgun.MailgunImpl
	Domain string
	From   string
}

func (m *Mailgun) Init(domain, apiKey, from string) {
	m.Client = mailgun.NewMailgun(domain, apiKey)
	m.Domain = domain
	m.From = from
}

// SendRedemptionReceipt mails the user a receipt for a points redemption.
func (m *Mailgun) SendRedemptionReceipt(recipient, rewardName string, points int) error {
	if m.Client == nil {
		return fmt.Errorf("mailgun client is not initialized")
	}

	subject := "Your points redemption receipt"
	body := fmt.Sprintf(
		"Hello,\n\nYou redeemed %q for %d points on %s.\n\nThank you for keeping your community's temperature map alive!\n",
		rewardName, points, time.Now().Format("January 2, 2006"),
	)

	message := m.Client.NewMessage(m.From, subject, body, recipient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("redemption receipt queued: id=%s resp=%s", id, resp)
	return nil
}
