package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/certsentry/certsentry/internal/checker"
	"github.com/certsentry/certsentry/internal/site"
	"github.com/certsentry/certsentry/internal/store"
	"github.com/certsentry/certsentry/pkg/logger"
)

// hostnamePattern is the bulk-import validation: a plausible DNS name with
// at least one dot-separated TLD.
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9](?:\.[a-zA-Z]{2,})+`)

// Handlers serves the JSON CRUD surface over the website store.
type Handlers struct {
	store   *store.Store
	checker *checker.Checker
	logs    *logger.RingBuffer
	logger  *slog.Logger
}

func NewHandlers(st *store.Store, ch *checker.Checker, logs *logger.RingBuffer, log *slog.Logger) *Handlers {
	return &Handlers{store: st, checker: ch, logs: logs, logger: log}
}

type addRequest struct {
	URL            string   `json:"url"`
	Name           string   `json:"name"`
	RelatedDomains []string `json:"related_domains"`
}

type importRequest struct {
	Domains string `json:"domains"`
}

type importResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/api/websites", h.listWebsites).Methods(http.MethodGet)
	r.HandleFunc("/api/websites", h.addWebsite).Methods(http.MethodPost)
	r.HandleFunc("/api/websites/{id:[0-9]+}", h.getWebsite).Methods(http.MethodGet)
	r.HandleFunc("/api/websites/{id:[0-9]+}", h.removeWebsite).Methods(http.MethodDelete)
	r.HandleFunc("/api/websites/{id:[0-9]+}/check", h.checkWebsite).Methods(http.MethodPost)
	r.HandleFunc("/api/refresh", h.refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/import", h.bulkImport).Methods(http.MethodPost)
	r.HandleFunc("/api/logs", h.recentLogs).Methods(http.MethodGet)
}

func (h *Handlers) listWebsites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (h *Handlers) addWebsite(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	url := site.CanonicalURL(req.URL)
	related := make([]string, 0, len(req.RelatedDomains))
	for _, d := range req.RelatedDomains {
		if d == "" {
			continue
		}
		related = append(related, site.CanonicalURL(d))
	}

	if err := h.store.Add(url, req.Name, related); err != nil {
		if errors.Is(err, store.ErrDuplicateURL) {
			writeError(w, http.StatusConflict, "website already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("Website added", "url", url)
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) getWebsite(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) removeWebsite(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.store.Remove(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("Website removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) checkWebsite(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.checker.CheckSite(r.Context(), &rec)
	if err := h.store.Update(id, rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	sites, err := h.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	updated := h.checker.CheckAll(r.Context(), sites)
	if err := h.store.Save(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) bulkImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	domains := splitDomains(req.Domains)
	if len(domains) == 0 {
		writeError(w, http.StatusBadRequest, "no valid domains provided")
		return
	}

	var resp importResponse
	for _, domain := range domains {
		if !hostnamePattern.MatchString(domain) {
			resp.Skipped++
			continue
		}
		url := "https://" + domain
		if err := h.store.Add(url, domain, nil); err != nil {
			resp.Skipped++
			continue
		}
		resp.Added++
	}
	h.logger.Info("Bulk import finished", "added", resp.Added, "skipped", resp.Skipped)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) recentLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, SanitizeLogLines(h.logs.GetLast(n)))
}

// splitDomains accepts either comma-separated or line-by-line input.
func splitDomains(text string) []string {
	var parts []string
	if strings.Contains(text, ",") {
		parts = strings.Split(text, ",")
	} else {
		parts = strings.Split(text, "\n")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
