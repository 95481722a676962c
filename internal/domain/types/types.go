// Package types contains the result shapes shared by the service, the HTTP
// API and the CLI.
package types

import "fmt"

// FileResult reports the outcome of one uploaded file.
type FileResult struct {
	File       string   `json:"file"`
	Subject    string   `json:"subject,omitempty"`
	Key        string   `json:"key,omitempty"`
	Encoding   string   `json:"encoding,omitempty"`
	Lossy      bool     `json:"lossy,omitempty"`
	RowsParsed int      `json:"rows_parsed"`
	RowsAdded  int      `json:"rows_added"`
	Duplicates int      `json:"duplicates"`
	TotalRows  int      `json:"total_rows"`
	Ignored    []string `json:"ignored_headers,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// OK reports whether the file was stored.
func (r FileResult) OK() bool { return r.Error == "" }

// String renders the one-line CLI form.
func (r FileResult) String() string {
	if !r.OK() {
		return fmt.Sprintf("FAIL %s: %s", r.File, r.Error)
	}
	return fmt.Sprintf("OK   %s: subject=%s parsed=%d added=%d duplicates=%d total=%d encoding=%s",
		r.File, r.Key, r.RowsParsed, r.RowsAdded, r.Duplicates, r.TotalRows, r.Encoding)
}

// IngestResult is the outcome of one ingest batch.
type IngestResult struct {
	BatchID string       `json:"batch_id"`
	Files   []FileResult `json:"files"`
	Failed  int          `json:"failed"`
}

// SubjectInfo describes one stored subject.
type SubjectInfo struct {
	Key     string   `json:"key"`
	Rows    int      `json:"rows"`
	Fields  []string `json:"fields"`
	Session string   `json:"session,omitempty"`
}

// Artifact is one rendered export.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Data        []byte `json:"-"`
}

// UploadFailure names an artifact the uploader rejected.
type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// PublishResult counts the artifacts sent to the uploader. Artifacts lists
// the uploaded ones and Failures the rejected ones.
type PublishResult struct {
	Subject   string          `json:"subject"`
	Session   string          `json:"session"`
	Sink      string          `json:"sink"`
	Uploaded  int             `json:"uploaded"`
	Failed    int             `json:"failed"`
	Artifacts []Artifact      `json:"artifacts"`
	Failures  []UploadFailure `json:"failures,omitempty"`
}
