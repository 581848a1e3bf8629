// Package site serves the embedded landing page.
package site

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Register attaches the landing page and its assets to router.
func Register(router *httprouter.Router) {
	if router == nil {
		panic("router is nil")
	}

	root := NewRootHandler()
	router.HandlerFunc(http.MethodGet, "/", root.HandleRoot)
	router.Handler(http.MethodGet, "/static/*filepath", http.StripPrefix("/static", http.FileServer(FS())))
}

// RootHandler handles root path requests.
type RootHandler struct {
	index []byte
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	index, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		index = []byte("<!doctype html><title>OrientBot</title><p>OrientBot</p>")
	}
	return &RootHandler{index: index}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.index)
}
