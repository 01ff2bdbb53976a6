package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESNotifier creates a new SES-backed Notifier.
func NewSESNotifier(region, fromAddress, fromName, frontendURL string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesNotifier) SendStageApproved(ctx context.Context, toEmail, toName string, formID uuid.UUID, stage domain.StageKey) error {
	subject := "Your application has moved forward"
	text := fmt.Sprintf("Hi %s,\n\nYour application %s has been verified at stage %s.\n\nTrack it at %s/forms/%s.\n\nDeedFlow Team",
		toName, formID, stage, s.frontendURL, formID)
	html := buildNotificationHTML(toName,
		"Your application has moved forward",
		fmt.Sprintf("Your application <b>%s</b> has been verified at stage <b>%s</b>.", formID, stage),
		s.formURL(formID))
	return s.send(ctx, toEmail, subject, html, text)
}

func (s *sesNotifier) SendCorrectionRequested(ctx context.Context, toEmail, toName string, formID uuid.UUID, notes string) error {
	subject := "Your application needs correction"
	text := fmt.Sprintf("Hi %s,\n\nYour application %s was sent back for correction:\n%s\n\nAmend and resubmit at %s/forms/%s.\n\nDeedFlow Team",
		toName, formID, notes, s.frontendURL, formID)
	html := buildNotificationHTML(toName,
		"Your application needs correction",
		fmt.Sprintf("Your application <b>%s</b> was sent back for correction: %s", formID, notes),
		s.formURL(formID))
	return s.send(ctx, toEmail, subject, html, text)
}

func (s *sesNotifier) SendFormLocked(ctx context.Context, toEmail, toName string, formID uuid.UUID) error {
	subject := "Your document is ready for delivery"
	text := fmt.Sprintf("Hi %s,\n\nYour application %s has passed final review and your document is being prepared.\nPlease choose a delivery method within 7 days at %s/forms/%s/delivery.\n\nDeedFlow Team",
		toName, formID, s.frontendURL, formID)
	html := buildNotificationHTML(toName,
		"Your document is ready for delivery",
		fmt.Sprintf("Your application <b>%s</b> has passed final review. Please choose a delivery method within 7 days.", formID),
		s.formURL(formID))
	return s.send(ctx, toEmail, subject, html, text)
}

func (s *sesNotifier) SendDeliveryEscalation(ctx context.Context, toEmail, toName string, formID uuid.UUID) error {
	subject := "Delivery selection overdue"
	text := fmt.Sprintf("Hi %s,\n\nThe applicant for form %s has not chosen a delivery method within the window. Please decide on their behalf at %s/forms/%s/delivery.\n\nDeedFlow Team",
		toName, formID, s.frontendURL, formID)
	html := buildNotificationHTML(toName,
		"Delivery selection overdue",
		fmt.Sprintf("The applicant for form <b>%s</b> has not chosen a delivery method within the window. Please decide on their behalf.", formID),
		s.formURL(formID))
	return s.send(ctx, toEmail, subject, html, text)
}

func (s *sesNotifier) formURL(formID uuid.UUID) string {
	return fmt.Sprintf("%s/forms/%s", s.frontendURL, formID)
}

func (s *sesNotifier) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildNotificationHTML(name, heading, body, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <p>Hi %s,</p>
  <p>%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Application</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">DeedFlow - Document Processing Platform</p>
</body>
</html>`, heading, name, body, link, link)
}
