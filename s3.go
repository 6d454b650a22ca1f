package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/stojg/gradient/dataset"
)

const s3Scheme = "s3://"

func isS3(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// parseS3 splits s3://bucket/key into bucket and key.
func parseS3(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	parts := strings.SplitN(rest, "/", 2)
	if !isS3(location) || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("%q is not of the form s3://bucket/key", location)
	}
	return parts[0], parts[1], nil
}

// readS3Table downloads a CSV object and decodes it.
func readS3Table(ctx context.Context, downloader s3manageriface.DownloaderAPI, location string) (*dataset.Table, error) {
	bucket, key, err := parseS3(location)
	if err != nil {
		return nil, err
	}
	buf := aws.NewWriteAtBuffer(nil)
	n, err := downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not download %s", location)
	}
	log.WithFields(log.Fields{"location": location, "bytes": n}).Debug("downloaded dataset")
	return dataset.ReadCSV(bytes.NewReader(buf.Bytes()))
}

// plotKey is where a chart of this run is stored in the bucket.
func plotKey(now time.Time, target, name string) string {
	return path.Join(now.Format("2006-01-02"), target, name)
}

// pipeToS3 streams the rendered chart to the bucket without buffering it in
// memory.
func pipeToS3(ctx context.Context, uploader s3manageriface.UploaderAPI, bucket, key string, np namedPlot) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writePlot(pw, np.plot))
	}()
	_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String("image/" + imageFormat),
		Body:        pr,
	})
	pr.Close()
	if err != nil {
		return errors.Wrapf(err, "could not upload %s to %s", key, bucket)
	}
	return nil
}

func getPresignedLink(svc s3iface.S3API, bucket, key string) (string, error) {
	req, _ := svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	urlStr, err := req.Presign(1 * time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %v", err)
	}
	return urlStr, nil
}

// uploadPlots uploads every chart and logs a presigned link to each.
func uploadPlots(ctx context.Context, uploader s3manageriface.UploaderAPI, svc s3iface.S3API, bucket, target string, plots []namedPlot) ([]string, error) {
	now := time.Now()
	var keys []string
	for _, np := range plots {
		key := plotKey(now, target, np.name)
		if err := pipeToS3(ctx, uploader, bucket, key, np); err != nil {
			return keys, err
		}
		keys = append(keys, key)
		if svc == nil {
			continue
		}
		link, err := getPresignedLink(svc, bucket, key)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("could not presign chart")
			continue
		}
		log.WithFields(log.Fields{"bucket": bucket, "key": key, "url": link}).Info("uploaded chart")
	}
	return keys, nil
}
