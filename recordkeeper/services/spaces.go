package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService talks to the S3-compatible bucket that keeps archived event
// snapshots.
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	SnapRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, snapRoot string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		SnapRoot: strings.TrimPrefix(snapRoot, "/"),
	}, nil
}

// Enabled reports whether snapshot uploads are configured.
func (s *SpacesService) Enabled() bool {
	return s != nil && s.bucket != ""
}

// PutSnapshot uploads one snapshot document under the snapshot root.
func (s *SpacesService) PutSnapshot(ctx context.Context, name string, body []byte) error {
	key := name
	if s.SnapRoot != "" {
		key = fmt.Sprintf("%s/%s", s.SnapRoot, name)
	}

	contentType := "application/json"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	return nil
}
