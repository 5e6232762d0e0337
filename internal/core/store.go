package core

import "fmt"

// Store holds the region directory and the merged records.
// It is populated once at startup and read-only afterwards, so one Store
// may be shared by every Workspace.
type Store struct {
	directory Directory
	records   Records
	regions   map[string]int
}

// NewStore returns a store loaded with directory and records.
func NewStore(directory Directory, records Records) *Store {
	s := &Store{}
	s.Load(directory, records)
	return s
}

// Load replaces the directory and records wholesale.
func (s *Store) Load(directory Directory, records Records) {
	s.directory = directory
	s.records = records
	s.regions = make(map[string]int, len(directory))
	for i, r := range directory {
		if _, dup := s.regions[r.Name]; !dup {
			s.regions[r.Name] = i
		}
	}
}

// FindRecord returns the first record named name, scanning every region's
// group in order. The region a record belongs to is ignored.
func (s *Store) FindRecord(name string) (*CountryRecord, bool) {
	for gi := range s.records {
		group := &s.records[gi]
		for ri := range group.Records {
			if group.Records[ri].Chinese == name {
				return &group.Records[ri], true
			}
		}
	}
	return nil, false
}

// Regions returns region names in directory order.
func (s *Store) Regions() []string {
	names := make([]string, 0, len(s.directory))
	for _, r := range s.directory {
		names = append(names, r.Name)
	}
	return names
}

// HasRegion reports whether region exists in the directory.
func (s *Store) HasRegion(region string) bool {
	_, ok := s.regions[region]
	return ok
}

// Region returns the directory entry for name.
func (s *Store) Region(name string) (Region, error) {
	i, ok := s.regions[name]
	if !ok {
		return Region{}, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	return s.directory[i], nil
}

// Countries returns the display names of region's countries in canonical order.
func (s *Store) Countries(region string) ([]string, error) {
	r, err := s.Region(region)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(r.Countries))
	for _, c := range r.Countries {
		names = append(names, c.Chinese)
	}
	return names, nil
}

// Stats returns the number of regions and records, for startup logging.
func (s *Store) Stats() (regions, records int) {
	for _, g := range s.records {
		records += len(g.Records)
	}
	return len(s.directory), records
}
