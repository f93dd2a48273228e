// Package httpapi implements the snapshot retrieval endpoint and a client for
// it.
//
// The endpoint is mounted at /api/calc and addresses snapshots with the id
// query parameter:
//
//	GET    /api/calc?id=<sid>   stored snapshot, or 404
//	PUT    /api/calc?id=<sid>   store the body verbatim and echo it back
//	DELETE /api/calc?id=<sid>   forget the snapshot, if any
//	GET    /api/calcs           {"ids": [...]}, the sorted ids of all snapshots
//
// Every error response carries a JSON body of the form {"error": "..."}.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"src.devlab.sh/pkg/logutil"
	"src.devlab.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("httpapi")

// Paths where NewMux mounts the endpoint and the listing.
const (
	Path     = "/api/calc"
	ListPath = "/api/calcs"
)

// Maximum size of a snapshot accepted by PUT.
const maxBody = 1 << 20

// Error messages in response bodies.
const (
	msgNotFound      = "Calc object not found"
	msgInvalidBody   = "Invalid request body"
	msgNotAllowed    = "Method not allowed"
	msgMissingID     = "Missing id"
	msgInternalError = "Internal error"
)

// Handler serves snapshots from a Store.
type Handler struct {
	store storedefs.Store
}

// NewHandler returns a Handler backed by st.
func NewHandler(st storedefs.Store) *Handler {
	return &Handler{st}
}

// NewMux returns a ServeMux with a Handler backed by st mounted at Path.
func NewMux(st storedefs.Store) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewHandler(st)
	mux.Handle(Path, h)
	mux.HandleFunc(ListPath, h.serveList)
	return mux
}

// IDList is the body of a successful response from ListPath.
type IDList struct {
	IDs []string `json:"ids"`
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, msgNotAllowed)
		return
	}
	ids, err := h.store.SnapshotIDs()
	if err != nil {
		logger.Errorw("listing snapshots", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(IDList{ids})
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	logger.Debugw("request", "method", r.Method, "id", id)
	switch r.Method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
	default:
		writeError(w, http.StatusMethodNotAllowed, msgNotAllowed)
		return
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, msgMissingID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, err := h.store.Snapshot(id)
		if errors.Is(err, storedefs.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		} else if err != nil {
			logger.Errorw("reading snapshot", "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, data)
	case http.MethodPut:
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
		if err != nil || len(data) == 0 || len(data) > maxBody || !json.Valid(data) {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if err := h.store.SetSnapshot(id, data); err != nil {
			logger.Errorw("writing snapshot", "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, data)
	case http.MethodDelete:
		if err := h.store.DelSnapshot(id); err != nil {
			logger.Errorw("deleting snapshot", "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(errorBody{msg})
	writeJSON(w, status, data)
}
