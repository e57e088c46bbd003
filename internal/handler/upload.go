package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// maxUploadSize is the per-file limit: 5 MiB exactly.
const maxUploadSize = 5_242_880

// mimeTypePattern accepts any image/* or video/* declared type. The check is
// on the DECLARED type only — we don't sniff the bytes, by the same token
// that we don't checksum or virus-scan. This endpoint trusts its
// authenticated callers that far.
var mimeTypePattern = regexp.MustCompile(`^(image|video)/[a-zA-Z]+`)

// UploadHandler accepts one media file per request and stores it on local
// disk, to be served back under /uploads/.
type UploadHandler struct {
	uploadDir string
	logger    *slog.Logger
}

// NewUploadHandler creates an UploadHandler, making sure the storage
// directory exists up front so the first upload doesn't fail on a missing
// path.
func NewUploadHandler(uploadDir string, logger *slog.Logger) (*UploadHandler, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("handler: creating upload directory %s: %w", uploadDir, err)
	}
	return &UploadHandler{
		uploadDir: uploadDir,
		logger:    logger,
	}, nil
}

// HandleUpload stores one uploaded file.
//
// HTTP: POST /upload (multipart/form-data, one file field)
// RESPONSE: {"fileUrl": "http://host/uploads/<uuid><ext>"}
//
// All rejections — no file, disallowed MIME type, oversized payload — answer
// a bare 400 with no body.
//
// STREAMING, NOT BUFFERING:
// r.MultipartReader() reads the body part by part as we consume it; the file
// flows straight from the TCP connection to disk through io.Copy. We never
// hold the payload in memory, and the size limit is enforced DURING the copy:
// a 6 MB upload is cut off just past 5 MiB, not written out and measured
// afterwards. (r.ParseMultipartForm would buffer first — that's why it isn't
// used here.)
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		h.logger.Warn("upload rejected: not a multipart request", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	part, err := nextFilePart(reader)
	if err != nil {
		h.logger.Warn("upload rejected: no file part")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer part.Close()

	contentType := part.Header.Get("Content-Type")
	if !mimeTypePattern.MatchString(contentType) {
		h.logger.Warn("upload rejected: disallowed MIME type", slog.String("contentType", contentType))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// A fresh random name avoids collisions between users uploading files
	// with the same name; the original extension is kept so the static file
	// server serves a sensible Content-Type later.
	fileName := uuid.NewString() + filepath.Ext(part.FileName())
	destPath := filepath.Join(h.uploadDir, fileName)

	dst, err := os.Create(destPath)
	if err != nil {
		h.logger.Error("upload failed: creating file", slog.String("path", destPath), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Copy at most one byte past the limit: landing beyond maxUploadSize
	// proves the file is too big without reading the rest of it.
	written, err := io.Copy(dst, io.LimitReader(part, maxUploadSize+1))
	if closeErr := dst.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		h.logger.Error("upload failed: writing file", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if written > maxUploadSize {
		os.Remove(destPath)
		h.logger.Warn("upload rejected: file exceeds size limit",
			slog.Int64("limit", maxUploadSize),
		)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	fileURL := fmt.Sprintf("%s://%s/uploads/%s", requestScheme(r), r.Host, fileName)

	h.logger.Info("file uploaded",
		slog.String("fileName", fileName),
		slog.Int64("bytes", written),
		slog.String("contentType", contentType),
	)

	writeJSON(w, http.StatusOK, map[string]string{"fileUrl": fileURL})
}

// nextFilePart advances to the first part that carries a file (FormName-only
// parts are ordinary form fields and are skipped).
func nextFilePart(reader *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// requestScheme reconstructs the scheme the client used, so the returned URL
// points back at this same server.
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
