// Package merge builds the merged country records dataset.
//
// Inputs:
//   - the country directory (countylink.json), which fixes regions, country
//     order and the name/chinese/code/url/lat/lng fields;
//   - the CIA factbook extract (country_data.json), either a flat list or
//     grouped by region, which contributes capital, area and population;
//   - up to three yearly World Bank extracts
//     (worldbank_indicators_data_{year}.csv) covering the years before the
//     current one.
//
// For each World Bank indicator the most recent year with a non-empty value
// wins. Output is written twice: region-grouped JSON, read by the server, and
// a flattened CSV with a trailing region column, offered as a download.
package merge
