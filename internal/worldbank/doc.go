// Package worldbank reads indicator observations from the World Bank API v2.
//
// Only the slice of the API the merge job needs is covered: one indicator
// for every country in one year, across as many pages as the API reports.
package worldbank
