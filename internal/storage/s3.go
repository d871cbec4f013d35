// Copyright (c) 2026 Rick Henry
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage uploads saved attachments to an S3 bucket and returns
// their public URLs.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Uploader puts local files into an S3 bucket as public-read objects.
type Uploader struct {
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewUploader creates an S3 uploader using the default AWS credential
// chain (environment, shared config, instance role).
func NewUploader(ctx context.Context, bucket, region string) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Uploader{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		bucket:   bucket,
		region:   region,
	}, nil
}

// Upload stores the file at localPath under a fresh uuid-namespaced key
// and returns the object's public URL. The uuid prefix keeps repeated
// uploads of identically named attachments from overwriting each other.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := uuid.New().String() + "/" + filepath.Base(localPath)

	if _, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    types.ObjectCannedACLPublicRead,
	}); err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", localPath, u.bucket, err)
	}

	url := objectURL(u.bucket, u.region, key)
	slog.Info("uploaded attachment", "path", localPath, "url", url)
	return url, nil
}

// objectURL builds the public virtual-hosted-style URL for an object.
func objectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
