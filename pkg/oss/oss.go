// Package oss implements the clip bank and output bucket on Alibaba Cloud
// OSS. Object ETags double as content fingerprints for deduplication.
package oss

import (
	"context"
	"mime"
	"path"
	"regexp"
	"strings"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

type Store struct {
	client *oss.Client
	bucket string
}

type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	AccessKeySecret string
}

func NewStore(cfg Config) *Store {
	ossCfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret)).
		WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		ossCfg = ossCfg.WithEndpoint(cfg.Endpoint)
	}
	return &Store{
		client: oss.NewClient(ossCfg),
		bucket: cfg.Bucket,
	}
}

// Simple uploads produce an ETag that is the hex MD5 of the content.
// Multipart ETags carry a part-count suffix and are not content hashes.
var md5ETagPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// The stdlib mime table lacks the video extensions the clip bank is made
// of, so common ones are mapped explicitly.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
}

func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

func (s *Store) List(ctx context.Context, prefix string) ([]types.Asset, error) {
	paginator := s.client.NewListObjectsV2Paginator(&oss.ListObjectsV2Request{
		Bucket: oss.Ptr(s.bucket),
		Prefix: oss.Ptr(prefix),
	})

	var assets []types.Asset
	for paginator.HasNext() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeObjectStore, "Object listing failed", err)
		}
		for _, obj := range page.Contents {
			key := oss.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			asset := types.Asset{
				Key:         key,
				Name:        path.Base(key),
				Size:        obj.Size,
				ContentType: contentTypeForKey(key),
			}
			if obj.LastModified != nil {
				asset.UpdatedAt = *obj.LastModified
			}
			if etag := strings.Trim(oss.ToString(obj.ETag), `"`); md5ETagPattern.MatchString(etag) {
				asset.MD5 = strings.ToLower(etag)
			}
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (s *Store) Download(ctx context.Context, key string, destPath string) error {
	_, err := s.client.GetObjectToFile(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	}, destPath)
	if err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeObjectStore, "Object download failed", key, err)
	}
	return nil
}

func (s *Store) Upload(ctx context.Context, localPath string, key string) (string, error) {
	_, err := s.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	}, localPath)
	if err != nil {
		return "", apperrors.WrapWithDetail(apperrors.CodeObjectStore, "Object upload failed", key, err)
	}
	return "oss://" + s.bucket + "/" + key, nil
}
