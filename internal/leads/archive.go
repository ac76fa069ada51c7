package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// S3API is the subset of the S3 client used by Archive.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive writes each submission as a JSON object to S3.
type Archive struct {
	client S3API
	bucket string
	logger *logging.Logger
}

// NewArchive creates an archive. If bucket is empty, Record is a no-op.
func NewArchive(client S3API, bucket string, logger *logging.Logger) *Archive {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// Enabled returns true if archival is configured.
func (a *Archive) Enabled() bool {
	return a != nil && a.bucket != "" && a.client != nil
}

// ObjectKey returns the S3 key for a submission.
func ObjectKey(sub *Submission) string {
	ts := sub.ReceivedAt.UTC()
	typ := sub.Type.MetricLabel()
	return fmt.Sprintf("leads/v1/by-date/%d/%02d/%02d/%s/%s.json", ts.Year(), ts.Month(), ts.Day(), typ, sub.ID)
}

func (a *Archive) Record(ctx context.Context, sub *Submission) error {
	if !a.Enabled() {
		return nil
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("leads: marshal archive record: %w", err)
	}
	key := ObjectKey(sub)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("leads: s3 put %s: %w", key, err)
	}
	a.logger.Debug("archived lead submission", "lead_id", sub.ID, "s3_key", key)
	return nil
}

var _ Recorder = (*Archive)(nil)
