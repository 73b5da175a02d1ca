package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PhotoStore uploads meal photos to S3 and hands back the public CDN URL
// stored on the Meal row.
type PhotoStore struct {
	client        *s3.Client
	bucket        string
	cloudFrontURL string
}

func NewPhotoStore(ctx context.Context, region, bucket, cloudFrontURL string) (*PhotoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &PhotoStore{
		client:        s3.NewFromConfig(cfg),
		bucket:        bucket,
		cloudFrontURL: cloudFrontURL,
	}, nil
}

// UploadMealPhoto accepts a "data:<mime>;base64,<data>" payload.
func (p *PhotoStore) UploadMealPhoto(ctx context.Context, userID, base64Data string) (string, error) {
	parts := strings.SplitN(base64Data, ",", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "data:") {
		return "", fmt.Errorf("invalid base64 image")
	}

	mediaType := strings.TrimPrefix(parts[0], "data:")        // "image/jpeg;base64"
	contentType := strings.SplitN(mediaType, ";", 2)[0]       // "image/jpeg"
	ext := ".jpg"
	if sub := strings.SplitN(contentType, "/", 2); len(sub) == 2 && sub[1] != "jpeg" && sub[1] != "jpg" {
		ext = "." + sub[1]
	}

	imageData, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	key := fmt.Sprintf("meal-photos/%s-%d%s", userID, time.Now().UnixNano(), ext)

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", p.cloudFrontURL, key), nil
}
