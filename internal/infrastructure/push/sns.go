package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-push-registry/internal/config"
)

type snsSender struct {
	client      *sns.Client
	platformARN string
}

// NewSNSSender returns a Sender that delivers through an SNS platform
// application (GCM/FCM behind SNS).
func NewSNSSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	if cfg.SNSPlatformAppARN == "" {
		return nil, fmt.Errorf("SNS_PLATFORM_APPLICATION_ARN is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &snsSender{client: sns.NewFromConfig(awsCfg), platformARN: cfg.SNSPlatformAppARN}, nil
}

// Send resolves the token to a platform endpoint and publishes a GCM-structured
// payload to it. CreatePlatformEndpoint is idempotent for an unchanged token,
// so the endpoint is not persisted alongside the device record.
func (s *snsSender) Send(ctx context.Context, token, title, body string) (string, error) {
	ep, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("resolve endpoint: %w", err)
	}

	// Protocol payloads inside a structured message are JSON strings, not objects.
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	})
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", err
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		MessageStructure: aws.String("json"),
		Message:          aws.String(string(raw)),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
