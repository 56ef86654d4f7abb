package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

// SendEmailAPI is the slice of the SES v2 client we depend on.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var ErrMissingSender = errors.New("EMAIL_FROM must be set to send email through SES")

type Client struct {
	api  SendEmailAPI
	from string
}

// InitSESClient loads the default AWS credential chain for region.
func InitSESClient(ctx context.Context, region, from string) (*Client, error) {
	if from == "" {
		return nil, ErrMissingSender
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewClient(sesv2.NewFromConfig(cfg), from), nil
}

func NewClient(api SendEmailAPI, from string) *Client {
	return &Client{api: api, from: from}
}

func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	_, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "MessageRejected":
			return fmt.Errorf("ses rejected message to %s: %s", to, apiErr.ErrorMessage())
		case "MailFromDomainNotVerifiedException", "NotFoundException":
			return fmt.Errorf("ses sender %s is not verified: %s", c.from, apiErr.ErrorMessage())
		case "TooManyRequestsException", "LimitExceededException", "SendingPausedException":
			return fmt.Errorf("ses throttled (%s): %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		default:
			return fmt.Errorf("ses send failed: %s - %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("ses send failed: %w", err)
}
