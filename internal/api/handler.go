package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wowtoc/internal/selection"
	"wowtoc/internal/session"
)

type Handler struct {
	Sessions   *session.Manager
	Tmpl       *template.Template
	Depth      int
	RenderWait time.Duration
}

func NewHandler(sessions *session.Manager, tmpl *template.Template, depth int, renderWait time.Duration) *Handler {
	return &Handler{Sessions: sessions, Tmpl: tmpl, Depth: depth, RenderWait: renderWait}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func backToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), h.RenderWait)
	defer cancel()
	page := h.buildPage(ctx, s)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Tmpl.ExecuteTemplate(w, "index.tmpl", page); err != nil {
		log.Error().Err(err).Str("session", s.ID).Msg("render index")
	}
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)
	product := strings.TrimSpace(r.FormValue("product"))
	if product != "" {
		s.Selection.Toggle(product, r.FormValue("region"), r.FormValue("version"))
	}
	backToIndex(w, r)
}

func (h *Handler) SetRegion(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)
	s.SetGlobalRegion(r.FormValue("region"))
	backToIndex(w, r)
}

func (h *Handler) SetProductRegion(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)
	product, err := url.PathUnescape(chi.URLParam(r, "product"))
	if err != nil {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.RenderWait)
	defer cancel()
	s.Catalog.Wait(ctx)

	v, ok := s.View(product)
	if !ok {
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	}
	v.SetRegion(r.FormValue("region"))
	backToIndex(w, r)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)
	s.Selection.Clear()
	backToIndex(w, r)
}

type selectionResp struct {
	Interface string            `json:"interface"`
	Cards     []selection.Entry `json:"cards"`
}

func (h *Handler) Selection(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Get(w, r)
	writeJSON(w, http.StatusOK, selectionResp{
		Interface: s.Selection.Display(),
		Cards:     s.Selection.Entries(),
	})
}

type toggleReq struct {
	Product string `json:"product"`
	Region  string `json:"region"`
	Version string `json:"version"`
}

type toggleResp struct {
	Selected  bool   `json:"selected"`
	Interface string `json:"interface"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) ToggleJSON(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, toggleResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Product) == "" {
		writeJSON(w, http.StatusBadRequest, toggleResp{Error: "product is required"})
		return
	}

	s := h.Sessions.Get(w, r)
	selected := s.Selection.Toggle(req.Product, req.Region, req.Version)
	writeJSON(w, http.StatusOK, toggleResp{Selected: selected, Interface: s.Selection.Display()})
}
