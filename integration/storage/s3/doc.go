// Package s3 provides a kv.Store backed by Amazon S3 or an S3-compatible service.
//
// Each key is stored as one JSON object under a configurable prefix, so the session
// snapshot for key "auth-storage" lands at "<prefix>/auth-storage.json".
//
// Basic usage:
//
//	store, err := s3.New(ctx, s3.Config{
//		Bucket: "my-app-sessions",
//		Region: "us-east-1",
//		Prefix: "authshell/",
//	})
//	if err != nil {
//		return err
//	}
//
//	sessions, err := session.New(ctx, store)
//
// # S3-Compatible Services
//
// MinIO configuration:
//
//	cfg := s3.Config{
//		Bucket:         "sessions",
//		Region:         "us-east-1",
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	}
//
// # Errors
//
// SDK errors are classified: missing objects become kv.ErrNotFound, and bucket,
// permission, throttling and context failures map to ErrBucketNotFound, ErrAccessDenied,
// ErrServiceUnavailable, ErrOperationTimeout and ErrOperationCanceled.
//
// # Testing
//
// Pass a mock through WithClient:
//
//	store, err := s3.New(ctx, cfg, s3.WithClient(mockClient))
package s3
