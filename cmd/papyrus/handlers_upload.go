package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/fileutil"
)

// multipartMemory is how much of a form is held in memory before parts
// spill to temporary files.
const multipartMemory = 32 << 20

// Multipart field names.
const (
	documentField  = "document"
	documentsField = "documents"
)

// upload is an extracted document plus what the client sent.
type upload struct {
	extraction *papyrus.Extraction
	header     *multipart.FileHeader
}

func supportedUpload(name string) bool {
	return slices.Contains(papyrus.SupportedExtensions, "."+fileutil.Extension(name))
}

// parseMultipart reads the form, answering 400 or 413 itself on failure.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error":     "Request body too large",
				"max_bytes": tooLarge.Limit,
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid multipart form",
			"message": err.Error(),
		})
		return false
	}
	return true
}

// spool copies an uploaded part into the upload directory. The extractor
// deletes it once read.
func (a *api) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp(a.svc.cfg.Paths.UploadDir, "upload-*."+fileutil.Extension(fh.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// receiveDocument validates, stores and extracts the single "document"
// part. It writes the error response itself and reports false on failure.
func (a *api) receiveDocument(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	if !parseMultipart(w, r) {
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[documentField]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return nil, false
	}
	fh := files[0]

	if fh.Size > a.svc.cfg.Upload.MaxFileSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"error":    "File too large",
			"max_size": a.svc.cfg.Upload.MaxFileSize,
		})
		return nil, false
	}
	if !supportedUpload(fh.Filename) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "Unsupported file format",
			"supported": papyrus.SupportedExtensions,
		})
		return nil, false
	}

	path, err := a.spool(fh)
	if err != nil {
		a.failure(w, r, "store upload", err)
		return nil, false
	}
	ex, err := a.svc.extractor.Extract(r.Context(), papyrus.SourceFile{Path: path, Name: fh.Filename})
	if err != nil {
		a.failure(w, r, "process document", err)
		return nil, false
	}
	return &upload{extraction: ex, header: fh}, true
}

func (a *api) uploadDocument(w http.ResponseWriter, r *http.Request) {
	up, ok := a.receiveDocument(w, r)
	if !ok {
		return
	}
	ex := up.extraction
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"upload_id":      ex.UploadID,
		"extracted_text": ex.Text,
		"metadata": map[string]any{
			"originalName": up.header.Filename,
			"size":         up.header.Size,
			"type":         up.header.Header.Get("Content-Type"),
			"uploadId":     ex.UploadID,
			"uploadTime":   timestamp(a.now()),
			"format":       ex.Format,
			"warnings":     ex.Warnings,
		},
		"statistics": ex.Statistics,
	})
}

// uploadBatch extracts every "documents" part. Failed files are listed in
// errors and the rest are still returned.
func (a *api) uploadBatch(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[documentsField]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No files uploaded"})
		return
	}
	if len(files) > a.svc.cfg.Upload.MaxBatchFiles {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "Too many files",
			"max_files": a.svc.cfg.Upload.MaxBatchFiles,
		})
		return
	}

	var (
		sources  []papyrus.SourceFile
		rejected []papyrus.BatchItemError
	)
	for _, fh := range files {
		switch {
		case fh.Size > a.svc.cfg.Upload.MaxFileSize:
			rejected = append(rejected, papyrus.BatchItemError{
				Filename: fh.Filename,
				Error:    fmt.Sprintf("file exceeds %d bytes", a.svc.cfg.Upload.MaxFileSize),
			})
		case !supportedUpload(fh.Filename):
			rejected = append(rejected, papyrus.BatchItemError{
				Filename: fh.Filename,
				Error:    "unsupported file format",
			})
		default:
			path, err := a.spool(fh)
			if err != nil {
				for _, s := range sources {
					_ = os.Remove(s.Path)
				}
				a.failure(w, r, "store upload", err)
				return
			}
			sources = append(sources, papyrus.SourceFile{Path: path, Name: fh.Filename})
		}
	}

	batch := a.svc.extractor.ExtractBatch(r.Context(), sources)
	batch.Errors = append(batch.Errors, rejected...)
	batch.ErrorCount = len(batch.Errors)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"batch_id":        batch.BatchID,
		"processed_count": batch.ProcessedCount,
		"error_count":     batch.ErrorCount,
		"results":         batch.Results,
		"errors":          batch.Errors,
	})
}

// uploadStatus reports every upload as completed: uploads are processed
// synchronously and nothing is kept afterwards.
func (a *api) uploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"upload_id": chi.URLParam(r, "id"),
		"status":    "completed",
		"message":   "Upload processed successfully",
	})
}
