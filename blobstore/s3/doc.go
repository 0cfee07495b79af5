// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "hydrodata",
//	    s3.WithPrefix("forcing/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	f, err := pfb.Open(ctx, store, "WY2003/NLDAS.Temp.daily.mean.001.pfb")
//
// # Features
//
//   - One ranged GET per subgrid read
//   - Whole-object download for small files (WithPrefetchBelow)
//   - Automatic pagination for listing
//   - S3-compatible endpoints (WithEndpoint)
package s3
