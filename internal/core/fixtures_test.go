package core

import "github.com/jackc/pgx/v5/pgtype"

// testStore returns a two-region store. 朝鲜 has no record; 韩国 lacks the
// GDP key; 蒙古 has a null population.
func testStore() *Store {
	directory := Directory{
		{Name: "东亚", Countries: []Country{
			{Name: "China", Chinese: "中国"},
			{Name: "Japan", Chinese: "日本"},
			{Name: "South Korea", Chinese: "韩国"},
			{Name: "North Korea", Chinese: "朝鲜"},
			{Name: "Mongolia", Chinese: "蒙古"},
		}},
		{Name: "西欧", Countries: []Country{
			{Name: "France", Chinese: "法国"},
			{Name: "Germany", Chinese: "德国"},
		}},
	}
	records := Records{
		{Region: "东亚", Records: []CountryRecord{
			{Chinese: "中国", Values: map[string]pgtype.Float8{
				"population": {Float64: 1411750000, Valid: true},
				"GDP (current US$)": {Float64: 17.96e12, Valid: true},
				"area": {Float64: 9596960, Valid: true},
			}},
			{Chinese: "日本", Values: map[string]pgtype.Float8{
				"population": {Float64: 125000000, Valid: true},
				"GDP (current US$)": {Float64: 4.23e12, Valid: true},
				"area": {Float64: 377915, Valid: true},
			}},
			{Chinese: "韩国", Values: map[string]pgtype.Float8{
				"population": {Float64: 51700000, Valid: true},
				"area": {Float64: 99720, Valid: true},
			}},
			{Chinese: "蒙古", Values: map[string]pgtype.Float8{
				"population": {},
				"area": {Float64: 1564116, Valid: true},
			}},
		}},
		{Region: "西欧", Records: []CountryRecord{
			{Chinese: "法国", Values: map[string]pgtype.Float8{
				"population": {Float64: 68000000, Valid: true},
			}},
			{Chinese: "德国", Values: map[string]pgtype.Float8{
				"population": {Float64: 84000000, Valid: true},
			}},
		}},
	}
	return NewStore(directory, records)
}

func testIndicators(keys ...string) []Indicator {
	c := DefaultCatalog()
	out := make([]Indicator, 0, len(keys))
	for _, k := range keys {
		label, _ := c.Label(k)
		out = append(out, Indicator{Key: k, Label: label, Active: true})
	}
	return out
}
