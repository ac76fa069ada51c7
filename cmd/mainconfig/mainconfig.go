package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/revsnap-web/internal/config"
)

// overriddenServices are routed to AWS_ENDPOINT_OVERRIDE (LocalStack) when set.
var overriddenServices = map[string]bool{
	sqs.ServiceID:      true,
	dynamodb.ServiceID: true,
	s3.ServiceID:       true,
	sesv2.ServiceID:    true,
}

// LoadAWSConfig centralizes AWS SDK initialization so the API server and
// the Lambda share the same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				if !overriddenServices[service] {
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
				return aws.Endpoint{
					URL:               endpoint,
					PartitionID:       "aws",
					SigningRegion:     cfg.AWSRegion,
					HostnameImmutable: true,
				}, nil
			},
		)
	}

	return awsCfg, nil
}

// S3Options returns client options for the archive bucket; LocalStack needs
// path-style addressing.
func S3Options(cfg *appconfig.Config) []func(*s3.Options) {
	if cfg.AWSEndpointOverride == "" {
		return nil
	}
	return []func(*s3.Options){func(o *s3.Options) { o.UsePathStyle = true }}
}

// AWSClients are the service clients the lead pipeline can use. A nil field
// means the matching feature is not configured.
type AWSClients struct {
	S3     *s3.Client
	SQS    *sqs.Client
	Dynamo *dynamodb.Client
	SES    *sesv2.Client
}

// BuildAWSClients creates only the clients that the config enables.
func BuildAWSClients(awsCfg aws.Config, cfg *appconfig.Config) AWSClients {
	var c AWSClients
	if cfg.LeadArchiveBucket != "" {
		c.S3 = s3.NewFromConfig(awsCfg, S3Options(cfg)...)
	}
	if cfg.LeadQueueURL != "" {
		c.SQS = sqs.NewFromConfig(awsCfg)
	}
	if cfg.LeadTable != "" {
		c.Dynamo = dynamodb.NewFromConfig(awsCfg)
	}
	if cfg.SESFromEmail != "" {
		c.SES = sesv2.NewFromConfig(awsCfg)
	}
	return c
}
