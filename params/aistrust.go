package params

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/mitchellh/go-homedir"
)

func init() {
	metrics.Enabled = true
}

const (
	ScoreDBName         = "scores.db"
	ArchiveGZFileName   = "scores.ndjson.gz"
	DefaultArchiveS3Key = "aistrust/" + ArchiveGZFileName
)

var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".aistrust")
}()

var (
	// ScoreDBBucketLast holds the latest record per vessel.
	ScoreDBBucketLast = []byte("last")
	// ScoreDBBucketHistory holds every record, keyed by vessel then time.
	ScoreDBBucketHistory = []byte("history")
)

var DefaultGZipCompressionLevel = gzip.BestCompression

var (
	CacheLastRecordTTL = 24 * time.Hour

	// DedupeCacheSize bounds the number of job ids remembered for de-duplication.
	DedupeCacheSize = 10_000
	// MemoCacheSize bounds the number of memoized scoring requests.
	MemoCacheSize = 1_000
)

// AWS_BUCKETNAME is the fallback bucket for score archives.
var AWS_BUCKETNAME = os.Getenv("AWS_BUCKETNAME")

var (
	INFLUXDB_URL    = os.Getenv("INFLUXDB_URL")
	INFLUXDB_TOKEN  = os.Getenv("INFLUXDB_TOKEN")
	INFLUXDB_ORG    = os.Getenv("INFLUXDB_ORG")
	INFLUXDB_BUCKET = os.Getenv("INFLUXDB_BUCKET")
)

// InfluxEnabled is true when an InfluxDB target is configured.
func InfluxEnabled() bool {
	return INFLUXDB_URL != "" && INFLUXDB_BUCKET != ""
}
