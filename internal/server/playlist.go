package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/formatter"
	"github.com/desertthunder/m3ux/internal/m3u"
	"github.com/desertthunder/m3ux/internal/services"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/desertthunder/m3ux/internal/tasks"
)

const maxValidateBytes = 10 << 20

// PlaylistHandler serves a parsed playlist.
//
//	GET  /playlist.m3u  filtered M3U (query: type, group, country, q)
//	GET  /groups        JSON summary of the same selection
//	POST /validate      strict check of an uploaded playlist
type PlaylistHandler struct {
	name    string
	records []*m3u.Record
	logger  *log.Logger
}

// NewPlaylistHandler creates a handler serving records.
func NewPlaylistHandler(name string, records []*m3u.Record, logger *log.Logger) *PlaylistHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistHandler{name: name, records: records, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"/playlist.m3u", "/groups", "/validate"}
}

// ServeHTTP dispatches on the request path.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/playlist.m3u":
		if requireMethod(w, r, http.MethodGet) {
			h.servePlaylist(w, r)
		}
	case "/groups":
		if requireMethod(w, r, http.MethodGet) {
			h.serveGroups(w, r)
		}
	case "/validate":
		if requireMethod(w, r, http.MethodPost) {
			h.serveValidate(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if allowMethod(method, r.Method) {
		return true
	}
	w.Header().Set("Allow", allowHeader(method))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// splitValues flattens repeated and comma-separated query values.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// FilterFromQuery builds a [tasks.Filter] from query parameters. Group names
// are matched whole, so only repeated group parameters are combined.
func FilterFromQuery(q url.Values) (tasks.Filter, error) {
	types, err := tasks.ParseTypes(splitValues(q["type"]))
	if err != nil {
		return tasks.Filter{}, err
	}

	var groups []string
	for _, g := range q["group"] {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}

	return tasks.Filter{
		Types:     types,
		Groups:    groups,
		Countries: splitValues(q["country"]),
		Search:    strings.TrimSpace(q.Get("q")),
	}, nil
}

func (h *PlaylistHandler) selection(w http.ResponseWriter, r *http.Request) ([]*m3u.Record, bool) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return filter.Apply(h.records), true
}

func (h *PlaylistHandler) servePlaylist(w http.ResponseWriter, r *http.Request) {
	records, ok := h.selection(w, r)
	if !ok {
		return
	}

	data, err := formatter.ExportToM3U(records)
	if err != nil {
		h.logger.Error("failed to render playlist", "error", err)
		http.Error(w, "Failed to render playlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+formatter.Filename(h.name, formatter.FormatM3U)+`"`)
	w.Write(data)
}

func (h *PlaylistHandler) serveGroups(w http.ResponseWriter, r *http.Request) {
	records, ok := h.selection(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, tasks.Summarize(records))
}

func (h *PlaylistHandler) serveValidate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValidateBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Playlist too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	text, err := services.Decode(data, r.URL.Query().Get("encoding"))
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, shared.ErrUnknownEncoding) {
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	report := Validate(text)
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, report)
}

func (h *PlaylistHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
