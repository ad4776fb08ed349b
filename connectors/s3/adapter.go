// Package s3 implements the connectors.Fetcher interface for AWS S3 and
// S3-compatible object stores. The bucket is the first path segment; paging
// by page number is mapped onto S3 continuation tokens.
package s3

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/config"
)

// Adapter implements connectors.Fetcher for S3.
type Adapter struct {
	client *s3.S3
	logger *zap.Logger

	mu     sync.Mutex
	tokens map[string]string // listing key -> continuation token for that page
}

// NewAdapter creates a new S3 fetcher.
func NewAdapter(cfg config.S3Config, logger *zap.Logger) (*Adapter, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	// Custom endpoint for MinIO and other S3-compatible stores
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(strings.HasPrefix(cfg.Endpoint, "http://"))
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Adapter{
		client: s3.New(sess),
		logger: logger,
		tokens: make(map[string]string),
	}, nil
}

// Close closes any resources used by the S3 adapter.
func (a *Adapter) Close() error {
	// No resources to close for S3
	return nil
}

// listingKey identifies one page of one listing in the token cache.
func listingKey(bucket, prefix, filter string, page int) string {
	return fmt.Sprintf("%s|%s|%s|%d", bucket, prefix, filter, page)
}

func (a *Adapter) tokenFor(key string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tok, ok := a.tokens[key]
	return tok, ok
}

func (a *Adapter) storeToken(key, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[key] = token
}

// isAccessDenied checks if an error indicates the listing was forbidden.
func isAccessDenied(err error) bool {
	return strings.Contains(err.Error(), "AccessDenied") || strings.Contains(err.Error(), "AllAccessDisabled")
}
