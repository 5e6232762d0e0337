package worldbank

// Indicator pairs a World Bank indicator code with the column name used in
// the yearly extracts.
type Indicator struct {
	Code string
	Name string
}

// DefaultIndicators are downloaded by the fetch job.
var DefaultIndicators = []Indicator{
	{Code: "NY.GDP.MKTP.CD", Name: "GDP (current US$)"},
	{Code: "NY.GDP.PCAP.CD", Name: "GDP per capita (current US$)"},
	{Code: "NY.GNP.PCAP.CD", Name: "GNI per capita (current US$)"},
	{Code: "SP.URB.TOTL.IN.ZS", Name: "Urban population (% of total)"},
	{Code: "NY.GDP.MKTP.KD.ZG", Name: "GDP growth (annual %)"},
	{Code: "TX.VAL.MRCH.CD.WT", Name: "Merchandise exports (current US$)"},
	{Code: "TM.VAL.MRCH.CD.WT", Name: "Merchandise imports (current US$)"},
	{Code: "SP.DYN.CBRT.IN", Name: "Birth rate, crude (per 1,000 people)"},
	{Code: "SP.DYN.CDRT.IN", Name: "Death rate, crude (per 1,000 people)"},
	{Code: "SP.POP.DPND", Name: "Age dependency ratio (% of working-age population)"},
}
