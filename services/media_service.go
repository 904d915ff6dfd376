package services

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"mime/multipart"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/techagentng/thermotrack/config"
)

const thumbnailWidth = 300

// UploadResult carries the public URLs of an uploaded image and its
// generated thumbnail.
type UploadResult struct {
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type MediaService interface {
	UploadReportImage(ctx context.Context, file *multipart.FileHeader, userID uint) (*UploadResult, error)
}

type mediaService struct {
	conf *config.Config
}

func NewMediaService(conf *config.Config) MediaService {
	return &mediaService{conf: conf}
}

// UploadReportImage stores the original image and a thumbnail in S3 and
// returns their public URLs.
func (s *mediaService) UploadReportImage(ctx context.Context, fileHeader *multipart.FileHeader, userID uint) (*UploadResult, error) {
	if s.conf.AwsBucketName == "" {
		return nil, fmt.Errorf("S3 bucket name is not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	var original bytes.Buffer
	if err := jpeg.Encode(&original, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	thumb := resize.Thumbnail(thumbnailWidth, thumbnailWidth, img, resize.Lanczos3)
	var thumbnail bytes.Buffer
	if err := jpeg.Encode(&thumbnail, thumb, nil); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	fileExtension := filepath.Ext(fileHeader.Filename)
	if fileExtension == "" {
		fileExtension = ".jpg"
	}
	baseKey := fmt.Sprintf("reports/%d_%s", userID, uuid.New().String())
	imageKey := baseKey + fileExtension
	thumbKey := baseKey + "_thumb" + fileExtension

	imageURL, err := s.putObject(ctx, client, imageKey, original.Bytes())
	if err != nil {
		return nil, err
	}
	thumbnailURL, err := s.putObject(ctx, client, thumbKey, thumbnail.Bytes())
	if err != nil {
		return nil, err
	}

	return &UploadResult{ImageURL: imageURL, ThumbnailURL: thumbnailURL}, nil
}

func (s *mediaService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.conf.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.conf.AwsAccessKeyID, s.conf.AwsSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (s *mediaService) putObject(ctx context.Context, client *s3.Client, key string, body []byte) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.conf.AwsBucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         "public-read",
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.conf.AwsBucketName, s.conf.AwsRegion, key), nil
}
