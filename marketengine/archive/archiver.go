// Package archive exports completed trade records to S3-compatible object
// storage as date-partitioned JSON documents.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/waxlabs/marketengine/marketengine/database/repositories"
)

type Archiver struct {
	client *s3.Client
	bucket string
	prefix string

	trades repositories.TradeRepository
}

func NewArchiver(key, secret, region, bucket, prefix string, trades repositories.TradeRepository) (*Archiver, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	return &Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.TrimSuffix(strings.TrimPrefix(prefix, "/"), "/"),
		trades: trades,
	}, nil
}

// Export uploads all trades completed since the given time as one JSON
// document keyed by export day.
func (a *Archiver) Export(ctx context.Context, since time.Time) (int, error) {
	trades, err := a.trades.ListSince(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(trades) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(trades)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal trade records: %w", err)
	}

	key := a.objectKey(time.Now().UTC())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload trade archive: %w", err)
	}

	slog.Info("trade archive exported",
		slog.String("key", key),
		slog.Int("trades", len(trades)))
	return len(trades), nil
}

func (a *Archiver) objectKey(now time.Time) string {
	key := fmt.Sprintf("trades/%s/%d.json", now.Format("2006/01/02"), now.UnixNano())
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}
