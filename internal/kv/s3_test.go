package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Store_UsesPrefixedKeys(t *testing.T) {
	f := newFakeS3()
	s := NewS3Store(f, "bucket", "credentials/")

	require.NoError(t, s.Set(context.Background(), "users", []byte(`{}`)))
	assert.Contains(t, f.objects, "bucket/credentials/users")
}

func TestS3Store_Errors(t *testing.T) {
	f := newFakeS3()
	f.err = errors.New("access denied")
	s := NewS3Store(f, "bucket", "")
	ctx := context.Background()

	_, err := s.Get(ctx, "users")
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, s.Set(ctx, "users", nil), "failed to set preference[users]")
	assert.ErrorContains(t, s.Delete(ctx, "users"), "failed to delete preference[users]")
}

func TestOpenS3(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var gotRegion string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		gotRegion = lo.Region
		assert.NotNil(t, lo.Credentials, "static credentials are wired when an access key is set")
		return aws.Config{Region: lo.Region}, nil
	}

	var applied s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&applied)
		}
		return fake
	}

	s, err := OpenS3(context.Background(), S3Options{
		Bucket:       "expensetracker",
		Region:       "eu-central-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Prefix:       "credentials/",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", gotRegion)
	require.NotNil(t, applied.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *applied.BaseEndpoint)
	assert.True(t, applied.UsePathStyle)
	assert.Equal(t, "expensetracker", s.bucket)
}

func TestOpenS3_Errors(t *testing.T) {
	_, err := OpenS3(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "bucket is required")

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err = OpenS3(context.Background(), S3Options{Bucket: "b"})
	assert.ErrorContains(t, err, "load aws config")
}
