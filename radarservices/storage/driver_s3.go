package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type DriverS3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// Prefix scopes every key, for example "radar/snapshots".
	Prefix string
}

func (config DriverS3Config) options() s3.Options {
	options := s3.Options{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     config.AccessKeyID,
				SecretAccessKey: config.AccessKeySecret,
			}, nil
		})),
	}

	// S3 compatible servers are addressed in path style
	if config.Endpoint != "" {
		options.BaseEndpoint = aws.String(config.Endpoint)
		options.UsePathStyle = true

		if options.Region == "" {
			options.Region = "auto"
		}
	}

	return options
}

// NewDriverS3 talks to AWS S3, or to any S3 compatible server when Endpoint
// is set. Keys are scoped below Prefix.
func NewDriverS3(config DriverS3Config) (Driver, error) {
	prefix, err := cleanPath(config.Prefix)
	if err != nil {
		return nil, err
	}

	if prefix == "." {
		prefix = ""
	}

	return &driverS3{
		client: s3.New(config.options()),
		bucket: config.Bucket,
		prefix: prefix,
	}, nil
}

type driverS3 struct {
	client *s3.Client
	bucket string
	prefix string
}

func (driver *driverS3) key(filePath string) (string, error) {
	cleaned, err := cleanPath(filePath)
	if err != nil {
		return "", err
	}

	if cleaned == "." {
		return "", ErrInvalidPath
	}

	return path.Join(driver.prefix, cleaned), nil
}

func (driver *driverS3) Put(ctx context.Context, filePath string, payload io.Reader) error {
	key, err := driver.key(filePath)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = driver.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(driver.bucket),
		Key:         aws.String(key),
		Body:        payload,
		ContentType: aws.String(contentType),
	})

	return err
}

func (driver *driverS3) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	key, err := driver.key(filePath)
	if err != nil {
		return nil, err
	}

	result, err := driver.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, errors.Join(ErrNotFound, err)
		}

		return nil, err
	}

	return result.Body, nil
}

func (driver *driverS3) Delete(ctx context.Context, filePath string) error {
	key, err := driver.key(filePath)
	if err != nil {
		return err
	}

	_, err = driver.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(key),
	})

	return err
}

func (driver *driverS3) Exists(ctx context.Context, filePath string) (bool, error) {
	key, err := driver.key(filePath)
	if err != nil {
		return false, err
	}

	if _, err := driver.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (driver *driverS3) List(ctx context.Context, directory string) ([]string, error) {
	cleaned, err := cleanPath(directory)
	if err != nil {
		return nil, err
	}

	listPrefix := driver.prefix
	if cleaned != "." {
		listPrefix = path.Join(driver.prefix, cleaned)
	}

	if listPrefix != "" {
		listPrefix += "/"
	}

	paths := []string{}
	paginator := s3.NewListObjectsV2Paginator(driver.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(driver.bucket),
		Prefix: aws.String(listPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if driver.prefix != "" {
				key = strings.TrimPrefix(key, driver.prefix+"/")
			}

			paths = append(paths, key)
		}
	}

	slices.Sort(paths)

	return paths, nil
}

func (driver *driverS3) IsReady(ctx context.Context) error {
	_, err := driver.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(driver.bucket),
	})

	return err
}
