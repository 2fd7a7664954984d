package scoredb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
)

// Uploader is the part of s3manager.Uploader that Archive uses.
type Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// NewS3Uploader uses the default AWS credential chain (env, shared config).
func NewS3Uploader() Uploader {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return s3manager.NewUploader(sess)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Archive streams the gzipped history to bucket/key.
func (s *DB) Archive(ctx context.Context, up Uploader, bucket, key string) (records int, err error) {
	if bucket == "" {
		return 0, fmt.Errorf("archive: no bucket")
	}
	pr, pw := io.Pipe()
	cw := &countingWriter{w: pw}
	dumped := make(chan int, 1)
	go func() {
		n, err := s.Dump(cw)
		pw.CloseWithError(err)
		dumped <- n
	}()

	start := time.Now()
	out, err := up.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:          aws.String(bucket),
		Key:             aws.String(key),
		Body:            pr,
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	// Unblock the dumper if the upload gave up early.
	pr.CloseWithError(err)
	records = <-dumped
	if err != nil {
		return records, fmt.Errorf("upload archive: %w", err)
	}
	slog.Info("Archived scores", "location", out.Location,
		"records", humanize.Comma(int64(records)),
		"size", humanize.Bytes(uint64(cw.n)),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return records, nil
}
