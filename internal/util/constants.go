package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
)

var (
	AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}
)

// 自动评分写入的评语
const AutoGradeFeedback = "자동 채점"
