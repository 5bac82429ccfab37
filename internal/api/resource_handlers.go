package api

import (
	"net/http"

	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	Version uint64      `json:"version"`
	State   store.State `json:"state"`
}

// ToggleRequest is the body of PATCH /api/{kind}/{id}/toggle.
type ToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// DeleteResponse is the body of a successful delete.
type DeleteResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, version := s.store.View()
	WriteJSON(w, http.StatusOK, StateResponse{Version: version, State: state})
}

func (s *Server) handleCollection(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		part, ok := s.store.Snapshot().Part(kind)
		if !ok {
			WriteErrorCtx(w, r, http.StatusNotFound, "unknown collection %s", kind)
			return
		}
		WriteJSON(w, http.StatusOK, part)
	}
}

func (s *Server) handleClearError(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.dispatcher.ClearError(r.Context(), kind); err != nil {
			writeOutcome(w, r, 0, nil, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// registerResource mounts the routes of one id-keyed collection.
func registerResource[T model.Record[T]](s *Server, mux *http.ServeMux, res *dispatch.Resource[T]) {
	var zero T
	kind := zero.Kind()
	base := "/api/" + string(kind)

	mux.HandleFunc("GET "+base, s.handleCollection(kind))
	mux.HandleFunc("POST "+base+"/clear-error", s.handleClearError(kind))

	mux.HandleFunc("POST "+base+"/fetch", func(w http.ResponseWriter, r *http.Request) {
		items, err := res.FetchAll(r.Context()).Wait(r.Context())
		writeOutcome(w, r, http.StatusOK, items, err)
	})

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var draft T
		if !decodeRecord(w, r, &draft) {
			return
		}
		rec, err := res.Create(r.Context(), draft).Wait(r.Context())
		writeOutcome(w, r, http.StatusCreated, rec, err)
	})

	mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if !decodeRecord(w, r, &rec) {
			return
		}
		rec = rec.WithID(r.PathValue("id"))
		updated, err := res.Update(r.Context(), rec).Wait(r.Context())
		writeOutcome(w, r, http.StatusOK, updated, err)
	})

	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := res.Delete(r.Context(), r.PathValue("id")).Wait(r.Context())
		writeOutcome(w, r, http.StatusOK, DeleteResponse{ID: id}, err)
	})

	mux.HandleFunc("PATCH "+base+"/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		var req ToggleRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Enabled == nil {
			WriteError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		t, err := res.Toggle(r.Context(), r.PathValue("id"), *req.Enabled).Wait(r.Context())
		writeOutcome(w, r, http.StatusOK, t, err)
	})
}

// decodeRecord decodes and validates a record body, answering 400 on
// failure.
func decodeRecord[T model.Record[T]](w http.ResponseWriter, r *http.Request, rec *T) bool {
	if err := decodeJSON(r, rec); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := (*rec).Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid record", err.Error())
		return false
	}
	return true
}
