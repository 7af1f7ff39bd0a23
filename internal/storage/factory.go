package storage

import (
	"context"
	"fmt"
	"os"
)

// FromEnv builds the upload store the process was configured with.
// STORAGE_DRIVER selects it: "local" (the default) keeps product images
// under UPLOAD_DIR on disk, "s3" needs the S3_* variables.
func FromEnv(ctx context.Context) (Storage, error) {
	switch driver := envOr("STORAGE_DRIVER", "local"); driver {
	case "local":
		return NewLocal(
			envOr("UPLOAD_DIR", "./data/uploads"),
			envOr("UPLOAD_URL_PREFIX", "/uploads"),
		), nil

	case "s3":
		cfg := S3Config{
			Region:        os.Getenv("S3_REGION"),
			Bucket:        os.Getenv("S3_BUCKET"),
			Prefix:        envOr("S3_PREFIX", "uploads"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		}
		if cfg.Region == "" || cfg.Bucket == "" || cfg.PublicBaseURL == "" {
			return nil, fmt.Errorf("s3 storage needs S3_REGION, S3_BUCKET and S3_PUBLIC_BASE_URL")
		}
		s, err := NewS3(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
