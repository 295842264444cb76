package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/itzrizvi/yooda-hostel-server/internal/service"
)

type ProgressSource interface {
	GetFileProgress(fileName string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
	RegisterProgressListener(ch chan *service.ProgressInfo)
	UnregisterProgressListener(ch chan *service.ProgressInfo)
}

type ProgressHandler struct {
	progress ProgressSource

	done      chan struct{}
	closeOnce sync.Once
}

func NewProgressHandler(progress ProgressSource) *ProgressHandler {
	return &ProgressHandler{progress: progress, done: make(chan struct{})}
}

// Shutdown ends every open progress stream. http.Server.Shutdown does not
// cancel the context of an active request, so streams watch this instead.
func (h *ProgressHandler) Shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
}

// GetFileProgress returns the progress for a specific file
func (h *ProgressHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		writeError(w, http.StatusBadRequest, "fileName parameter is required")
		return
	}

	progress := h.progress.GetFileProgress(filepath.Base(fileName))
	if progress == nil {
		writeError(w, http.StatusNotFound, "File not found or not being processed")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// GetAllProgress returns the progress for all files being processed
func (h *ProgressHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.progress.GetAllFileProgress())
}

// SSEProgress streams progress updates to the client using Server-Sent Events (SSE)
func (h *ProgressHandler) SSEProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so a broadcast never waits on this client; the channel is not
	// closed here because the broadcaster may still hold it.
	progressChan := make(chan *service.ProgressInfo, 16)
	h.progress.RegisterProgressListener(progressChan)
	defer h.progress.UnregisterProgressListener(progressChan)

	for {
		select {
		case progress := <-progressChan:
			data, err := json.Marshal(progress)
			if err != nil {
				log.Println("Error marshaling progress:", err)
				continue
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				log.Println("Error writing SSE data:", err)
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		case <-h.done:
			return
		}
	}
}
