package notifications

import (
	"context"
	"errors"

	appconfig "estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgoconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// EmailNotifier defines the interface for an email notifier.
type EmailNotifier interface {
	SendEmail(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

// SESEmailNotifier implements EmailNotifier over AWS SES.
type SESEmailNotifier struct {
	client *sesv2.Client
	sender string
}

// NewEmailNotifier builds the SES notifier from configuration. It returns
// nil (no error) when SES is not configured, in which case callers fall
// back to SendEmailNotification's logged simulation.
func NewEmailNotifier(ctx context.Context) (EmailNotifier, error) {
	awsRegion := appconfig.Cfg.AWSRegion
	senderEmail := appconfig.Cfg.AWSSESEmailSender

	if awsRegion == "" || senderEmail == "" {
		applog.L.Warn("AWS SES email service is not configured (missing AWS_REGION or AWS_SES_EMAIL_SENDER). Email notifications will be simulated.")
		return nil, nil
	}

	cfg, err := awsgoconfig.LoadDefaultConfig(ctx, awsgoconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, err
	}

	applog.L.Info("AWS SES email service initialized",
		zap.String("sender", senderEmail),
		zap.String("region", awsRegion))

	return &SESEmailNotifier{
		client: sesv2.NewFromConfig(cfg),
		sender: senderEmail,
	}, nil
}

// SendEmailNotification sends through the given notifier, or logs a
// simulated send when none is configured.
func SendEmailNotification(ctx context.Context, notifier EmailNotifier, to, subject, bodyHTML, bodyText string) error {
	if notifier == nil {
		applog.L.Info("--- SIMULATING EMAIL SEND ---",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	return notifier.SendEmail(ctx, to, subject, bodyHTML, bodyText)
}

func (s *SESEmailNotifier) SendEmail(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	if s.client == nil {
		return errors.New("SES client not initialized")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(bodyHTML),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(bodyText),
						Charset: aws.String("UTF-8"),
					},
				},
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		applog.L.Error("Failed to send email via SES",
			zap.Error(err),
			zap.String("recipient", to))
		return err
	}

	applog.L.Info("Successfully sent email",
		zap.String("recipient", to),
		zap.String("subject", subject))
	return nil
}
