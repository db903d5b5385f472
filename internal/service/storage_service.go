package service

import (
	"bufio"
	"bytes"
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(filename string) string
	Delete(ctx context.Context, filename string) error
}

// LocalStorageProvider 本地存储实现，文件通过 /uploads 静态路由访问
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(filename))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(dst)
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	err := os.Remove(filepath.Join(p.Config.LocalPath, filepath.FromSlash(filename)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	scheme := "http"
	if p.Config.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	if err := bucket.PutObject(filename, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(p.Config.OSSEndpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, endpoint, filename)
}

func (p *OSSStorageProvider) Delete(ctx context.Context, filename string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(filename, oss.WithContext(ctx))
}

// UploadResult 图片上传结果
type UploadResult struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	MaxBytes int64
	now      func() time.Time
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("init minio storage failed, fallback to local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("init oss storage failed, fallback to local", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	maxMB := cfg.Storage.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &StorageService{Provider: provider, MaxBytes: maxMB << 20, now: time.Now}
}

// UploadImage 校验大小与真实 MIME 类型后上传题目图片
// 对象名形如 images/2006/01/<uuid>.png
func (s *StorageService) UploadImage(ctx context.Context, reader io.Reader, size int64) (*UploadResult, error) {
	if size > s.MaxBytes {
		return nil, util.ErrFileTooLarge
	}

	buffered := bufio.NewReaderSize(reader, 512)
	head, err := buffered.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if len(head) == 0 {
		return nil, util.ErrInvalidFileType
	}
	mimeType, err := util.ValidateMimeType(bytes.NewReader(head), util.AllowedImageTypes)
	if err != nil || !util.IsImage(mimeType) {
		return nil, fmt.Errorf("%s: %w", mimeType, util.ErrInvalidFileType)
	}

	name := path.Join("images", s.now().Format("2006/01"), uuid.NewString()+util.ExtensionFor(mimeType))
	// 多读一个字节用于发现声明大小与实际内容不符
	limited := io.LimitReader(buffered, s.MaxBytes+1)
	counter := &countingReader{r: limited}

	url, err := s.Provider.Upload(ctx, name, counter, size, mimeType)
	if err != nil {
		return nil, err
	}
	if counter.n > s.MaxBytes {
		// 已写入的截断对象不保留
		if err := s.Provider.Delete(ctx, name); err != nil {
			logger.Log.Warn("remove oversized upload failed", zap.String("filename", name), zap.Error(err))
		}
		return nil, util.ErrFileTooLarge
	}

	logger.Log.Info("image uploaded", zap.String("filename", name), zap.Int64("size", counter.n), zap.String("contentType", mimeType))
	return &UploadResult{URL: url, Filename: name, Size: counter.n, ContentType: mimeType}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
