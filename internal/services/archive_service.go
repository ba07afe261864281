package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService pushes generated statements to R2 so finance has an
// immutable monthly trail outside the database
type ArchiveService struct {
	client *s3.Client
	bucket string
	Report *ReportService
}

// NewArchiveService builds the R2 client; with empty credentials the
// service is disabled and ArchiveStatement refuses politely.
func NewArchiveService(ctx context.Context, endpoint, accessKey, secretKey, bucket, region string, report *ReportService) (*ArchiveService, error) {
	svc := &ArchiveService{bucket: bucket, Report: report}
	if accessKey == "" || secretKey == "" || endpoint == "" {
		log.Println("[Archive] R2 credentials not configured, statement archiving disabled")
		return svc, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure R2 client: %w", err)
	}
	svc.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return svc, nil
}

// Enabled reports whether uploads are configured
func (s *ArchiveService) Enabled() bool {
	return s.client != nil
}

// ArchiveStatement renders the owner's statement for the window in both
// formats and uploads them under statements/{owner}/{period}/.
// Returns the uploaded object keys.
func (s *ArchiveService) ArchiveStatement(ctx context.Context, ownerID int, period string, from, to time.Time) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("statement archiving is not configured")
	}

	csvData, err := s.Report.StatementCSV(ctx, ownerID, 0, from, to)
	if err != nil {
		return nil, err
	}
	pdfData, err := s.Report.StatementPDF(ctx, ownerID, 0, from, to)
	if err != nil {
		return nil, err
	}

	keys := []string{
		fmt.Sprintf("statements/%d/%s/statement.csv", ownerID, period),
		fmt.Sprintf("statements/%d/%s/statement.pdf", ownerID, period),
	}
	uploads := []struct {
		key         string
		contentType string
		data        []byte
	}{
		{keys[0], "text/csv", csvData},
		{keys[1], "application/pdf", pdfData},
	}

	for _, u := range uploads {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(u.key),
			Body:        bytes.NewReader(u.data),
			ContentType: aws.String(u.contentType),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", u.key, err)
		}
	}
	log.Printf("[Archive] owner %d period %s: %d objects uploaded", ownerID, period, len(keys))
	return keys, nil
}
