package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/web/templates"
)

// pageParams snapshots ws for rendering. Call it under the session lock.
func pageParams(ws *core.Workspace) templates.PageParams {
	countries := ws.Countries()
	options := make([]templates.CountryOption, len(countries))
	all := len(countries) > 0
	for i, name := range countries {
		selected := ws.Selection().Has(name)
		options[i] = templates.CountryOption{Name: name, Selected: selected}
		all = all && selected
	}

	return templates.PageParams{
		Regions:    ws.Store().Regions(),
		Region:     ws.Region(),
		Countries:  options,
		AllChecked: all,
		Selected:   ws.Selection().Members(),
		Indicators: ws.Catalog().All(),
		Table:      ws.LastTable(),
		Stale:      ws.Stale(),
	}
}

// render writes the full page, or only its content for HTMX requests.
func (s *Server) render(w http.ResponseWriter, r *http.Request, p templates.PageParams, status int) {
	p.Status = s.avail.Status(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	component := templates.Page(p)
	if isHTMX(r) {
		component = templates.Content(p)
	}
	if err := component.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err)
	}
}

// handleIndex renders the comparison page for the current workspace.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var p templates.PageParams
	err := s.withWorkspace(w, r, func(ws *core.Workspace) error {
		p = pageParams(ws)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.render(w, r, p, http.StatusOK)
}

// mutate applies fn to the workspace and answers with the refreshed page:
// a redirect for plain form posts, the page content for HTMX.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*core.Workspace) error) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err), http.StatusBadRequest)
		return
	}

	var p templates.PageParams
	err := s.withWorkspace(w, r, func(ws *core.Workspace) error {
		if err := fn(ws); err != nil {
			return err
		}
		p = pageParams(ws)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		s.render(w, r, p, http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSetRegion(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		region := strings.TrimSpace(r.PostFormValue("region"))
		if region == "" {
			return fmt.Errorf("%w: region is required", errInvalidRequest)
		}
		return ws.SetRegion(region)
	})
}

// handleToggleCountry selects or deselects one country. The select-all
// sentinel applies to the whole active region.
func (s *Server) handleToggleCountry(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		name := strings.TrimSpace(r.PostFormValue("country"))
		if name == "" {
			return fmt.Errorf("%w: country is required", errInvalidRequest)
		}
		selected := formBool(r, "selected", true)
		if name == core.SelectAllValue {
			ws.SelectAll(selected)
			return nil
		}
		ws.Toggle(name, selected)
		return nil
	})
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.SelectAll(formBool(r, "selected", true))
		return nil
	})
}

func (s *Server) handleClearCountries(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.Clear()
		return nil
	})
}

func (s *Server) handleToggleIndicator(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		key := r.PostFormValue("key")
		if key == "" {
			return fmt.Errorf("%w: key is required", errInvalidRequest)
		}
		return ws.SetIndicator(key, formBool(r, "active", true))
	})
}

// handleCompare builds the table for the workspace and renders the page.
// On failure the page keeps the previous table and shows the error.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var (
		p          templates.PageParams
		compareErr error
	)
	err := s.withWorkspace(w, r, func(ws *core.Workspace) error {
		t, err := ws.Compare()
		compareErr = err
		p = pageParams(ws)
		if err == nil {
			ctx := core.ContextWithRegion(r.Context(), ws.Region())
			logging.FromContext(ctx).Info("comparison built", "rows", len(t.Rows), "columns", len(t.Keys))
		}
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if compareErr != nil {
		status = statusFor(compareErr)
		msg := core.MapError(compareErr)
		p.Error = &msg
		logging.FromContext(r.Context()).Warn("comparison rejected", "error", compareErr, "code", msg.Code)
	}
	s.render(w, r, p, status)
}

// formBool reads a boolean form field, falling back to def when it is
// missing or unparsable.
func formBool(r *http.Request, name string, def bool) bool {
	v := r.PostFormValue(name)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "on":
		return true
	case "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
