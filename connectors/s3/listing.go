package s3

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/connectors"
)

// FetchPage returns one page of child entries. With no segments it lists
// buckets; otherwise the first segment names the bucket and the rest form
// the key prefix. The name filter maps onto the key prefix, which S3
// evaluates server side.
func (a *Adapter) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	if len(req.Segments) == 0 {
		return a.listBuckets(ctx, req)
	}

	bucket := req.Segments[0]
	prefix := strings.Join(req.Segments[1:], "/")
	if prefix != "" {
		prefix += "/"
	}

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix + req.Filter),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int64(int64(req.PageSize)),
	}

	key := listingKey(bucket, prefix, req.Filter, req.Page)
	if req.Page > 1 {
		token, ok := a.tokenFor(key)
		if !ok {
			// cold start into a later page, walk the tokens forward
			token, ok = a.seekToken(ctx, input, bucket, prefix, req)
			if !ok {
				return &connectors.Page{Entries: []connectors.Entry{}, NextPageNumber: req.Page}, nil
			}
		}
		input.ContinuationToken = aws.String(token)
	}

	result, err := a.client.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		if isAccessDenied(err) {
			return &connectors.Page{
				Entries:        []connectors.Entry{},
				NextPageNumber: req.Page,
				SoftError:      fmt.Sprintf("listing denied for s3://%s/%s", bucket, prefix),
			}, nil
		}
		return nil, fmt.Errorf("failed to list objects in S3: %w", err)
	}

	entries := make([]connectors.Entry, 0, len(result.CommonPrefixes)+len(result.Contents))

	for _, commonPrefix := range result.CommonPrefixes {
		if commonPrefix.Prefix == nil {
			continue
		}
		dirName := strings.TrimSuffix(strings.TrimPrefix(*commonPrefix.Prefix, prefix), "/")
		if dirName == "" {
			continue
		}
		entries = append(entries, connectors.Entry{
			Name: dirName,
			Kind: connectors.EntryDir,
		})
	}

	for _, object := range result.Contents {
		if object.Key == nil || strings.HasSuffix(*object.Key, "/") {
			continue
		}
		fileName := strings.TrimPrefix(*object.Key, prefix)
		if fileName == "" || strings.Contains(fileName, "/") {
			continue
		}
		entry := connectors.Entry{
			Name: fileName,
			Kind: connectors.EntryFile,
			Size: aws.Int64Value(object.Size),
		}
		if object.LastModified != nil {
			entry.MTime = *object.LastModified
		}
		entries = append(entries, entry)
	}

	// directories and files arrive in separate groups; restore the global
	// name order the deep walk relies on
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	nextPage := req.Page
	if aws.BoolValue(result.IsTruncated) && result.NextContinuationToken != nil {
		nextPage = req.Page + 1
		a.storeToken(listingKey(bucket, prefix, req.Filter, nextPage), *result.NextContinuationToken)
	}

	a.logger.Debug("S3 page fetched",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("page", req.Page),
		zap.Int("entries", len(entries)))

	return &connectors.Page{Entries: entries, NextPageNumber: nextPage}, nil
}

// seekToken replays the listing from the start to recover the continuation
// token for a page requested out of sequence.
func (a *Adapter) seekToken(ctx context.Context, input *s3.ListObjectsV2Input, bucket, prefix string, req connectors.Request) (string, bool) {
	var token string
	for page := 1; page < req.Page; page++ {
		seekInput := &s3.ListObjectsV2Input{
			Bucket:    input.Bucket,
			Prefix:    input.Prefix,
			Delimiter: input.Delimiter,
			MaxKeys:   input.MaxKeys,
		}
		if token != "" {
			seekInput.ContinuationToken = aws.String(token)
		}
		result, err := a.client.ListObjectsV2WithContext(ctx, seekInput)
		if err != nil || !aws.BoolValue(result.IsTruncated) || result.NextContinuationToken == nil {
			return "", false
		}
		token = *result.NextContinuationToken
		a.storeToken(listingKey(bucket, prefix, req.Filter, page+1), token)
	}
	return token, true
}

// listBuckets serves the tree root, where the buckets appear as directories.
// The bucket list is small and unpaginated upstream, so pages are sliced
// locally.
func (a *Adapter) listBuckets(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	result, err := a.client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		if isAccessDenied(err) {
			return &connectors.Page{
				Entries:        []connectors.Entry{},
				NextPageNumber: req.Page,
				SoftError:      "bucket listing denied",
			}, nil
		}
		return nil, fmt.Errorf("failed to list S3 buckets: %w", err)
	}

	entries := make([]connectors.Entry, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		name := aws.StringValue(b.Name)
		if name == "" || (req.Filter != "" && !strings.HasPrefix(name, req.Filter)) {
			continue
		}
		entry := connectors.Entry{Name: name, Kind: connectors.EntryDir}
		if b.CreationDate != nil {
			entry.MTime = *b.CreationDate
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	start := (req.Page - 1) * req.PageSize
	if start > len(entries) {
		start = len(entries)
	}
	end := start + req.PageSize
	if end > len(entries) {
		end = len(entries)
	}

	nextPage := req.Page
	if end < len(entries) {
		nextPage = req.Page + 1
	}

	return &connectors.Page{Entries: entries[start:end], NextPageNumber: nextPage}, nil
}

// FetchContent returns a file's content for previews.
func (a *Adapter) FetchContent(ctx context.Context, req connectors.Request) (io.ReadCloser, error) {
	if len(req.Segments) < 2 {
		return nil, fmt.Errorf("s3 content fetch needs a bucket and a key")
	}

	bucket := req.Segments[0]
	key := strings.Join(req.Segments[1:], "/")

	result, err := a.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, key, err)
	}

	return result.Body, nil
}
