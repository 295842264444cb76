package handler

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxUploadBytes = 100 << 20 // 100MB

// StudentImporter runs an import in the background. Imports outlive the
// request that started them.
type StudentImporter interface {
	Start(filePath string)
}

// ImportHandler accepts student CSV uploads and hands them to the importer.
type ImportHandler struct {
	importer  StudentImporter
	uploadDir string
}

func NewImportHandler(importer StudentImporter, uploadDir string) *ImportHandler {
	return &ImportHandler{importer: importer, uploadDir: uploadDir}
}

func (h *ImportHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Println("Error creating upload directory:", err)
		writeError(w, http.StatusInternalServerError, "Failed to create uploads directory")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Expected a multipart form with CSV files")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	accepted := make([]string, 0, len(files))
	rejected := make([]string, 0)

	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			rejected = append(rejected, name)
			continue
		}

		src, err := fh.Open()
		if err != nil {
			log.Println("Error opening file:", err)
			rejected = append(rejected, name)
			continue
		}

		savePath := filepath.Join(h.uploadDir, name)
		if err := saveUpload(src, savePath); err != nil {
			log.Println("Error saving the file:", err)
			rejected = append(rejected, name)
			continue
		}

		h.importer.Start(savePath)
		accepted = append(accepted, name)
	}

	status, message := http.StatusAccepted, "Files uploaded successfully and processing started"
	if len(accepted) == 0 {
		status, message = http.StatusBadRequest, "No CSV files were accepted"
	}
	writeJSON(w, status, map[string]any{
		"message":  message,
		"files":    accepted,
		"rejected": rejected,
	})
}

func saveUpload(src io.ReadCloser, path string) error {
	defer src.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
