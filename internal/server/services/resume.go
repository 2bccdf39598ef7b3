package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	sc "github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

const resumeUploadExpiry = 15 * time.Minute

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeUpload is what a candidate needs to PUT a resume straight into
// object storage.
type ResumeUpload struct {
	UploadURL   string
	ResumeURL   string
	Key         string
	ContentType string
	ExpiresAt   time.Time
}

// ResumeService hands out presigned upload URLs for candidate resumes and
// records the object URL on the candidate profile once the upload is
// confirmed.
type ResumeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewResumeService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *ResumeService {
	return &ResumeService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

func resumeStorageKey(userID int64, ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("resumes/%d/%d/%02d/%v%s", userID, d.Year(), d.Month(), uuid.New(), ext)
}

func (s *ResumeService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// objectURL is the path-style URL of key in the configured bucket.
func (s *ResumeService) objectURL(key string) string {
	return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
}

// UploadURL presigns a PUT for a new resume object owned by the calling
// candidate. Only .pdf, .doc and .docx file names are accepted. The profile
// is left untouched until ConfirmUpload sees the object in the bucket.
func (s *ResumeService) UploadURL(ctx context.Context, caller *Identity, fileName string) (*ResumeUpload, error) {
	if caller.Role != models.RoleCandidate {
		return nil, common.ErrorForbidden
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return nil, common.NewValidationError("Unsupported resume file type %q", ext)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client: %w", err)
	}
	presignClient := newS3PresignClient(client)

	bucket := s.config.S3Bucket
	key := resumeStorageKey(caller.UserID, ext)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(resumeUploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	upload := &ResumeUpload{
		UploadURL:   req.URL,
		ResumeURL:   s.objectURL(key),
		Key:         key,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(resumeUploadExpiry),
	}

	return upload, nil
}

// ConfirmUpload records key as the caller's resume after checking that the
// object exists. Keys issued to other candidates are rejected.
func (s *ResumeService) ConfirmUpload(ctx context.Context, caller *Identity, key string) (string, error) {
	if caller.Role != models.RoleCandidate {
		return "", common.ErrorForbidden
	}

	key = strings.TrimSpace(key)
	prefix := fmt.Sprintf("resumes/%d/", caller.UserID)
	if !strings.HasPrefix(key, prefix) || path.Clean(key) != key {
		return "", common.NewValidationError("Invalid resume key")
	}
	if _, ok := resumeContentTypes[strings.ToLower(path.Ext(key))]; !ok {
		return "", common.NewValidationError("Invalid resume key")
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	if _, err := headObject(client, ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return "", common.NewValidationError("Resume has not been uploaded")
		}
		return "", fmt.Errorf("error checking resume object: %w", err)
	}

	resumeURL := s.objectURL(key)
	if err := s.repomanager.Users(s.db).SetResumeURL(ctx, caller.UserID, resumeURL); err != nil {
		return "", fmt.Errorf("error saving resume url: %w", err)
	}

	return resumeURL, nil
}
