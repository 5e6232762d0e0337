package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/go-chi/chi/v5"
)

// maxCompareBody bounds POST /api/compare bodies.
const maxCompareBody = 1 << 20

// RegionSummary is one entry of GET /api/regions.
type RegionSummary struct {
	Name      string `json:"name"`
	Countries int    `json:"countries"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	dataset.Status
	LastModifiedText string `json:"last_modified_text"`
	Regions          int    `json:"regions"`
	Records          int    `json:"records"`
}

// CompareRequest is the body of POST /api/compare. Omitting Indicators
// selects every indicator; an empty list selects none.
type CompareRequest struct {
	Region     string   `json:"region"`
	Countries  []string `json:"countries"`
	Indicators []string `json:"indicators"`
}

func (s *Server) handleAPIRegions(w http.ResponseWriter, r *http.Request) {
	names := s.store.Regions()
	out := make([]RegionSummary, 0, len(names))
	for _, name := range names {
		region, err := s.store.Region(name)
		if err != nil {
			continue
		}
		out = append(out, RegionSummary{Name: name, Countries: len(region.Countries)})
	}
	writeJSON(w, r, out)
}

func (s *Server) handleAPICountries(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "region"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err), http.StatusBadRequest)
		return
	}
	region, err := s.store.Region(name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	countries := region.Countries
	if countries == nil {
		countries = []core.Country{}
	}
	writeJSON(w, r, countries)
}

func (s *Server) handleAPIIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, core.DefaultCatalog().All())
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	st := s.avail.Status(r.Context())
	regions, records := s.store.Stats()
	writeJSON(w, r, StatusResponse{
		Status:           st,
		LastModifiedText: st.LastModifiedText(),
		Regions:          regions,
		Records:          records,
	})
}

// handleAPICompare builds a table from the request alone. It does not touch
// any browser workspace.
func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCompareBody)

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err), http.StatusBadRequest)
		return
	}

	table, err := s.compare(req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, table)
}

func (s *Server) compare(req CompareRequest) (*core.TableModel, error) {
	order, err := s.store.Countries(req.Region)
	if err != nil {
		return nil, err
	}

	catalog := core.DefaultCatalog()
	indicators := catalog.Active()
	if req.Indicators != nil {
		indicators, err = catalog.Lookup(req.Indicators)
		if err != nil {
			return nil, err
		}
	}

	sel := core.NewSelection()
	for _, name := range req.Countries {
		sel.Toggle(name, true)
	}
	return core.BuildTable(sel, indicators, order, s.store)
}
