package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// IngestHandler handles POST /ingest.
type IngestHandler struct {
	deps     IngestDependencies
	maxBytes int64
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies, maxBytes int64) *IngestHandler {
	return &IngestHandler{deps: deps, maxBytes: maxBytes}
}

// HandleIngest reads the multipart "files" field and ingests every file.
// The response is 200 even when some files failed; each result names its
// own error.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeFailure(w, WrapKind("ingest", ErrTooLarge, err))
			return
		}
		writeFailure(w, WrapKind("ingest", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeFailure(w, NewKind("ingest", ErrBadRequest, `multipart field "files" is empty`))
		return
	}

	files := make([]model.RawFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			writeFailure(w, WrapKind("ingest", ErrBadRequest, err))
			return
		}
		files = append(files, model.RawFile{Name: filepath.Base(fh.Filename), Data: data})
	}

	res, err := h.deps.Ingest(r.Context(), files)
	if err != nil {
		writeFailure(w, Wrap("ingest", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}
