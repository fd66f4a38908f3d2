// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "backups/")
//
//	err = db.Backup(ctx, "snapshot.json", compress.ZSTD, store)
//
// # Features
//
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
