package core

// Workspace is the application context for one user: the shared Store plus
// that user's selection, indicator flags, active region and last table.
//
// A Workspace is not safe for concurrent use. Callers that share one across
// goroutines must serialize access (see session.Manager).
type Workspace struct {
	store     *Store
	selection *Selection
	catalog   *Catalog
	region    string
	lastTable *TableModel
}

// NewWorkspace returns a workspace over store with an empty selection, every
// default indicator active, and the first directory region active.
func NewWorkspace(store *Store) *Workspace {
	w := &Workspace{
		store:     store,
		selection: NewSelection(),
		catalog:   DefaultCatalog(),
	}
	if regions := store.Regions(); len(regions) > 0 {
		w.region = regions[0]
	}
	return w
}

// Store returns the shared store.
func (w *Workspace) Store() *Store { return w.store }

// Selection returns the live selection.
func (w *Workspace) Selection() *Selection { return w.selection }

// Catalog returns the live indicator catalog.
func (w *Workspace) Catalog() *Catalog { return w.catalog }

// Region returns the active region name.
func (w *Workspace) Region() string { return w.region }

// LastTable returns the most recent successful comparison, or nil.
func (w *Workspace) LastTable() *TableModel { return w.lastTable }

// SetRegion switches the active region. The selection is kept as is, so
// countries chosen in other regions remain selected.
func (w *Workspace) SetRegion(name string) error {
	if !w.store.HasRegion(name) {
		return wrapRegion(name)
	}
	w.region = name
	return nil
}

// Countries returns the active region's countries in canonical order.
func (w *Workspace) Countries() []string {
	if w.region == "" {
		return nil
	}
	names, err := w.store.Countries(w.region)
	if err != nil {
		return nil
	}
	return names
}

// Toggle selects or deselects one country.
func (w *Workspace) Toggle(name string, selected bool) {
	w.selection.Toggle(name, selected)
}

// SelectAll selects or deselects every country of the active region.
func (w *Workspace) SelectAll(selected bool) {
	w.selection.SelectAll(w.Countries(), selected)
}

// Clear empties the selection.
func (w *Workspace) Clear() {
	w.selection.Clear()
}

// SetIndicator flips one indicator column on or off.
func (w *Workspace) SetIndicator(key string, active bool) error {
	return w.catalog.SetActive(key, active)
}

// Compare builds the table for the current state. On success the table is
// remembered as LastTable; on failure LastTable is left as it was.
func (w *Workspace) Compare() (*TableModel, error) {
	t, err := BuildTable(w.selection, w.catalog.Active(), w.Countries(), w.store)
	if err != nil {
		return nil, err
	}
	w.lastTable = t
	return t, nil
}

// Stale returns selected names that are not in the active region, in
// selection order. Compare omits these from its rows.
func (w *Workspace) Stale() []string {
	inRegion := make(map[string]bool)
	for _, n := range w.Countries() {
		inRegion[n] = true
	}
	var stale []string
	for _, n := range w.selection.Members() {
		if !inRegion[n] {
			stale = append(stale, n)
		}
	}
	return stale
}
