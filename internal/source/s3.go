package source

import (
	"context"
	"fmt"
	"net/url"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob" // S3 driver
)

// openS3Bucket opens an S3-compatible bucket.
// Works with AWS S3, Backblaze B2, Cloudflare R2, and MinIO.
// endpoint can be empty for AWS S3, or a custom URL for B2/R2/MinIO.
func openS3Bucket(ctx context.Context, bucketName, endpoint, region string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, s3BucketURL(bucketName, endpoint, region))
	if err != nil {
		return nil, fmt.Errorf("open S3 bucket %s: %w", bucketName, err)
	}
	return bucket, nil
}

// For AWS: s3://bucket-name?region=us-east-1
// For custom endpoint: s3://bucket-name?endpoint=https://s3.us-west-000.backblazeb2.com&region=us-west-000
func s3BucketURL(bucketName, endpoint, region string) string {
	bucketURL := fmt.Sprintf("s3://%s", bucketName)

	params := url.Values{}
	if region != "" {
		params.Set("region", region)
	}
	if endpoint != "" {
		params.Set("endpoint", endpoint)
		// Custom endpoints generally need path-style addressing
		params.Set("s3ForcePathStyle", "true")
	}
	if len(params) > 0 {
		bucketURL = bucketURL + "?" + params.Encode()
	}
	return bucketURL
}
