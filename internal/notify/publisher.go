package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/certsentry/certsentry/pkg/config"
)

// Publisher delivers an alert to a notification topic. Implementations are
// fire-and-forget from the monitor's point of view: a failed publish never
// aborts a probe cycle.
type Publisher interface {
	Publish(ctx context.Context, topicARN, subject, message string) error
}

// SNSPublisher publishes alerts to an AWS SNS topic.
type SNSPublisher struct {
	client *sns.Client
}

func NewSNSPublisher(cfg config.SNSConfig) (*SNSPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &SNSPublisher{client: sns.NewFromConfig(awsCfg)}, nil
}

func (p *SNSPublisher) Publish(ctx context.Context, topicARN, subject, message string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topicARN, err)
	}
	return nil
}

// NoopPublisher is used when no topic is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topicARN, subject, message string) error {
	return nil
}

// NewPublisher returns the SNS publisher when a topic is configured and a
// no-op otherwise, so callers never branch on configuration themselves.
func NewPublisher(cfg *config.ServerConfig, logger *slog.Logger) (Publisher, error) {
	if !cfg.NotificationsEnabled() {
		logger.Info("Notifications disabled, no SNS topic configured")
		return NoopPublisher{}, nil
	}
	logger.Info("SNS notifications enabled", "topic", cfg.SNS.TopicARN, "region", cfg.SNS.Region)
	return NewSNSPublisher(cfg.SNS)
}
