package sns

import (
	"context"
	"errors"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/frelsi/frelsi-api/internal/config"
)

// Alerter publishes security notifications (brute-force blocks) to an SNS
// topic so the site owner hears about attacks without watching the audit log.
type Alerter interface {
	PublishAlert(ctx context.Context, subject, message string) error
}

type alerter struct {
	client   *sns.Client
	topicARN string
}

// NewAlerter builds an SNS-backed Alerter. Returns an error when no topic is
// configured; callers treat the alerter as optional.
func NewAlerter(cfg *config.Config) (Alerter, error) {
	if cfg.SNSAlertTopicARN == "" {
		return nil, errors.New("no SNS alert topic configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &alerter{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSAlertTopicARN}, nil
}

func (a *alerter) PublishAlert(ctx context.Context, subject, message string) error {
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &a.topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	return err
}
