package core

import "fmt"

// Indicator describes one statistic column.
type Indicator struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// IndicatorDef is a (key, label) pair used to build a Catalog.
type IndicatorDef struct {
	Key   string
	Label string
}

// DefaultIndicators is the fixed label table, in column order.
var DefaultIndicators = []IndicatorDef{
	{Key: "area", Label: "面积"},
	{Key: "population", Label: "人口"},
	{Key: "Age dependency ratio (% of working-age population)", Label: "年龄依赖比（占劳动年龄人口的百分比）"},
	{Key: "GDP (current US$)", Label: "国内生产总值（现价美元）"},
	{Key: "GDP growth (annual %)", Label: "国内生产总值增长率（年度百分比）"},
	{Key: "GDP per capita (current US$)", Label: "人均国内生产总值（现价美元）"},
	{Key: "GNI per capita (current US$)", Label: "人均国民总收入（现价美元）"},
	{Key: "Merchandise exports (current US$)", Label: "商品出口（现价美元）"},
	{Key: "Merchandise imports (current US$)", Label: "商品进口（现价美元）"},
	{Key: "Urban population (% of total)", Label: "城市人口（占总人口百分比）"},
}

// Catalog is the ordered indicator list. Declaration order is fixed at
// construction and governs table column order; only active flags change.
type Catalog struct {
	items []Indicator
	index map[string]int
}

// NewCatalog builds a catalog from defs with every entry active.
// Panics on a duplicate key, like a duplicate registration.
func NewCatalog(defs []IndicatorDef) *Catalog {
	c := &Catalog{
		items: make([]Indicator, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if _, exists := c.index[d.Key]; exists {
			panic(fmt.Sprintf("indicator already declared: %s", d.Key))
		}
		c.index[d.Key] = len(c.items)
		c.items = append(c.items, Indicator{Key: d.Key, Label: d.Label, Active: true})
	}
	return c
}

// DefaultCatalog returns a fresh catalog over DefaultIndicators.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultIndicators)
}

// SetActive flips the active flag of key.
func (c *Catalog) SetActive(key string, active bool) error {
	i, ok := c.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, key)
	}
	c.items[i].Active = active
	return nil
}

// ActiveKeys returns active keys in declaration order.
func (c *Catalog) ActiveKeys() []string {
	keys := make([]string, 0, len(c.items))
	for _, it := range c.items {
		if it.Active {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

// Active returns the active indicators in declaration order.
func (c *Catalog) Active() []Indicator {
	out := make([]Indicator, 0, len(c.items))
	for _, it := range c.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out
}

// All returns a copy of every indicator in declaration order.
func (c *Catalog) All() []Indicator {
	return append([]Indicator(nil), c.items...)
}

// Label returns the display label for key.
func (c *Catalog) Label(key string) (string, bool) {
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.items[i].Label, true
}

// Lookup resolves keys to indicators in catalog declaration order, ignoring
// the active flags. Unknown keys are an error.
func (c *Catalog) Lookup(keys []string) ([]Indicator, error) {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := c.index[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, k)
		}
		want[k] = true
	}
	out := make([]Indicator, 0, len(want))
	for _, it := range c.items {
		if want[it.Key] {
			it.Active = true
			out = append(out, it)
		}
	}
	return out, nil
}
