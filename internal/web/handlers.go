package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/ops"
)

// Handlers contains HTTP route handlers for the history browser.
type Handlers struct {
	deps     *ops.Deps
	renderer *Renderer
}

// HandleList handles GET /history: recent items, or matches for ?q=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		query = ""
	}

	result, err := ops.Pick(r.Context(), h.deps, ops.PickInput{
		Query: query,
		Limit: parseIntParam(r, "limit", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	title := "History"
	if query != "" {
		title = "Search"
	}
	data := ListPageData{
		PageData: h.renderer.page(title, "history"),
		Query:    query,
		Entries:  result.Entries,
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "results", data)
		return
	}
	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /history/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, http.StatusOK, "")
}

// HandlePin handles POST /history/{id}/pin. The "pinned" form value
// defaults to true.
func (h *Handlers) HandlePin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	pinned := true
	if v := r.FormValue("pinned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("pinned must be true or false"))
			return
		}
		pinned = b
	}

	result, err := ops.Pin(r.Context(), h.deps, ops.PinInput{ID: r.PathValue("id"), Pinned: pinned})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/history/"+result.ID, http.StatusSeeOther)
}

// HandleRestore handles POST /history/{id}/restore. It puts the item back on
// the pasteboard without pasting.
func (h *Handlers) HandleRestore(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Restore(r.Context(), h.deps, ops.RestoreInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	flash := restoreFlash(result.Result)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="flash">` + template.HTMLEscapeString(flash) + `</div>`))
		return
	}

	h.renderDetail(w, r, http.StatusOK, flash)
}

// HandleDelete handles DELETE /history/{id} and POST /history/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.deps, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/history")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// HandleStatus handles GET /status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Status(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, r, "status", StatusPageData{
		PageData: h.renderer.page("Status", "status"),
		Status:   result,
	})
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, status int, flash string) {
	item, err := ops.Fetch(r.Context(), h.deps, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, status, item)
		return
	}

	data := DetailPageData{
		PageData: h.renderer.page(displayName(item), "history"),
		Item:     item,
		Flash:    flash,
	}
	if item.Kind == clip.KindText && item.Text != nil && looksLikeMarkdown(*item.Text) {
		data.IsMarkdown = true
		data.RenderedHTML = renderMarkdown(*item.Text)
	}
	h.renderer.renderPage(w, r, "detail", data)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// displayName returns the first line of the preview, or a truncated ID.
func displayName(item *ops.FetchOutput) string {
	if line, _, _ := strings.Cut(item.PreviewText, "\n"); strings.TrimSpace(line) != "" {
		if len([]rune(line)) > 60 {
			return string([]rune(line)[:60]) + "..."
		}
		return line
	}
	if len(item.ID) > 10 {
		return item.ID[:10] + "..."
	}
	return item.ID
}
