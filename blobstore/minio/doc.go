// Package minio provides a blobstore.Store backed by the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without the AWS SDK.
//
// # Basic Usage
//
//	client, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "hydrodata", "forcing/")
//	f, err := pfb.Open(ctx, store, "WY2003/NLDAS.Temp.daily.mean.001.pfb")
//
// For other client settings (region, custom transport) build the client with
// minio.New and pass it to NewStore.
package minio
