package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/clipboard"
	"github.com/ezshare/ezshare/pkg/share"
)

// ClipboardHandler relays text between clients and the host clipboard.
type ClipboardHandler struct {
	clip clipboard.Service
	root share.Root
}

// NewClipboardHandler creates a new ClipboardHandler.
func NewClipboardHandler(clip clipboard.Service, root share.Root) *ClipboardHandler {
	return &ClipboardHandler{clip: clip, root: root}
}

// Paste handles POST /api/paste: a form with a "clipboard" text field.
// With saveAsFile=true the text is written to a timestamped file in the
// shared root instead of the host clipboard.
func (h *ClipboardHandler) Paste(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequest(w, "Invalid form body")
		return
	}

	text := r.PostFormValue("clipboard")

	if r.PostFormValue("saveAsFile") == "true" {
		name := fmt.Sprintf("client-clipboard-%d.txt", time.Now().UnixMilli())
		abs, err := h.root.Resolve(name)
		if err == nil {
			err = os.WriteFile(abs, []byte(text), 0644)
		}
		if err != nil {
			logger.Error("Failed to save clipboard file", "error", err)
			InternalServerError(w, "Failed to save clipboard text")
			return
		}
		logger.Info("Clipboard text saved to file", "file", filepath.Base(abs))
		WriteJSONOK(w, SuccessResponse{Success: true})
		return
	}

	if err := h.clip.Write(text); err != nil {
		logger.Error("Failed to write host clipboard", "error", err)
		InternalServerError(w, "Failed to write clipboard")
		return
	}

	WriteJSONOK(w, SuccessResponse{Success: true})
}

// Copy handles POST /api/copy: returns the host clipboard content as plain
// text.
func (h *ClipboardHandler) Copy(w http.ResponseWriter, r *http.Request) {
	text, err := h.clip.Read()
	if err != nil {
		logger.Error("Failed to read host clipboard", "error", err)
		InternalServerError(w, "Failed to read clipboard")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
