package main

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	s3manageriface.DownloaderAPI
	objects map[string]string
}

func (f *fakeDownloader) DownloadWithContext(_ aws.Context, w io.WriterAt, input *s3.GetObjectInput, _ ...func(*s3manager.Downloader)) (int64, error) {
	body, ok := f.objects[*input.Bucket+"/"+*input.Key]
	if !ok {
		return 0, errors.New("NoSuchKey")
	}
	n, err := w.WriteAt([]byte(body), 0)
	return int64(n), err
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	uploads map[string][]byte
	err     error
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[*input.Bucket+"/"+*input.Key] = b
	return &s3manager.UploadOutput{}, nil
}

func TestParseS3(t *testing.T) {
	tests := map[string]struct {
		location string
		bucket   string
		key      string
		valid    bool
	}{
		"object":        {location: "s3://datasets/houses.csv", bucket: "datasets", key: "houses.csv", valid: true},
		"nested key":    {location: "s3://datasets/2018/houses.csv", bucket: "datasets", key: "2018/houses.csv", valid: true},
		"no key":        {location: "s3://datasets", valid: false},
		"empty bucket":  {location: "s3:///houses.csv", valid: false},
		"trailing only": {location: "s3://datasets/", valid: false},
		"local path":    {location: "houses.csv", valid: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			bucket, key, err := parseS3(tc.location)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestReadS3Table(t *testing.T) {
	d := &fakeDownloader{objects: map[string]string{
		"datasets/houses.csv": "size,price\n2104,399900\n1600,329900\n",
	}}
	table, err := readS3Table(context.Background(), d, "s3://datasets/houses.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"size", "price"}, table.Header)
	assert.Equal(t, 2, table.Len())

	_, err = readS3Table(context.Background(), d, "s3://datasets/missing.csv")
	assert.Error(t, err)
}

func TestUploadPlots(t *testing.T) {
	p := singleFeatureProblem(t)
	results, err := sweep(context.Background(), p, Config{Alphas: []float64{0.5}, MaxIterations: 100})
	require.NoError(t, err)
	plots, err := buildPlots(p, results, nil)
	require.NoError(t, err)

	u := &fakeUploader{}
	keys, err := uploadPlots(context.Background(), u, nil, "charts", "price", plots)
	require.NoError(t, err)
	require.Len(t, keys, len(plots))

	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, time.Now().Format("2006-01-02")+"/price/"), key)
		body := u.uploads["charts/"+key]
		assert.True(t, strings.HasPrefix(string(body), "\x89PNG"), key)
	}
}

func TestUploadPlots_Error(t *testing.T) {
	p := singleFeatureProblem(t)
	results, err := sweep(context.Background(), p, Config{Alphas: []float64{0.5}, MaxIterations: 10})
	require.NoError(t, err)
	plots, err := buildPlots(p, results, nil)
	require.NoError(t, err)

	u := &fakeUploader{err: errors.New("AccessDenied")}
	keys, err := uploadPlots(context.Background(), u, nil, "charts", "price", plots)
	assert.Error(t, err)
	assert.Empty(t, keys)
}

func TestPlotKey(t *testing.T) {
	now := time.Date(2018, 8, 14, 7, 40, 0, 0, time.UTC)
	assert.Equal(t, "2018-08-14/price/fit.png", plotKey(now, "price", "fit.png"))
}
