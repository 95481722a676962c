package upload

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive uploads files into a Google Drive folder with a service account.
type Drive struct {
	svc    *drive.Service
	folder string
}

// NewDrive creates a Drive sink. Credentials are required unless client
// options supply their own authentication.
func NewDrive(ctx context.Context, s Settings) (*Drive, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	switch {
	case len(s.DriveCredJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(s.DriveCredJSON))
	case len(s.DriveClientOpts) == 0:
		return nil, fmt.Errorf("%w: drive credentials are required", ErrConfig)
	}
	opts = append(opts, s.DriveClientOpts...)

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: drive client: %w", ErrConfig, err)
	}
	return &Drive{svc: svc, folder: s.DriveFolderID}, nil
}

func (d *Drive) Name() string { return SinkDrive }

func (d *Drive) Upload(ctx context.Context, name, contentType string, data []byte) error {
	meta := &drive.File{Name: name, MimeType: contentType}
	if d.folder != "" {
		meta.Parents = []string{d.folder}
	}
	_, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: drive %s: %w", ErrUpload, name, err)
	}
	return nil
}
