package upload

import (
	"google.golang.org/api/option"

	"github.com/okian/pitchtrack/pkg/logger"
)

// Settings holds the configuration of every sink.
type Settings struct {
	DriveFolderID   string
	DriveCredJSON   []byte
	DriveClientOpts []option.ClientOption

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3AccessKey string
	S3SecretKey string

	log logger.Logger
}

func newSettings(opts ...Option) Settings {
	s := Settings{S3Region: "us-east-1", log: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures Open.
type Option func(*Settings)

// WithDriveFolder uploads into the given Drive folder id.
func WithDriveFolder(id string) Option {
	return func(s *Settings) { s.DriveFolderID = id }
}

// WithDriveCredentials sets the service account JSON key.
func WithDriveCredentials(json []byte) Option {
	return func(s *Settings) { s.DriveCredJSON = json }
}

// WithDriveClientOptions appends raw client options, e.g. an endpoint.
func WithDriveClientOptions(opts ...option.ClientOption) Option {
	return func(s *Settings) { s.DriveClientOpts = append(s.DriveClientOpts, opts...) }
}

// WithS3Bucket sets the destination bucket.
func WithS3Bucket(bucket string) Option {
	return func(s *Settings) { s.S3Bucket = bucket }
}

func WithS3Region(region string) Option {
	return func(s *Settings) {
		if region != "" {
			s.S3Region = region
		}
	}
}

// WithS3Endpoint targets an S3 compatible endpoint with path-style addressing.
func WithS3Endpoint(endpoint string) Option {
	return func(s *Settings) { s.S3Endpoint = endpoint }
}

// WithS3Prefix prepends prefix to every object key.
func WithS3Prefix(prefix string) Option {
	return func(s *Settings) { s.S3Prefix = prefix }
}

// WithS3StaticCredentials bypasses the default credential chain.
func WithS3StaticCredentials(accessKey, secretKey string) Option {
	return func(s *Settings) { s.S3AccessKey, s.S3SecretKey = accessKey, secretKey }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.log = l
		}
	}
}
