// Package dataset loads the two datasets behind the comparison tool: the
// region directory ("countylink") and the merged country records
// ("merged_country_data").
//
// Both datasets come from a [Source], either JSON files on disk or JSON
// documents stored in Postgres. [Load] fetches them concurrently and fails as
// a whole if either fails; there is no partial store and no retry.
//
// JSON object key order is significant in both files (region order and, for
// the directory, the order of the region select), so decoding walks the
// token stream instead of unmarshalling into maps.
package dataset
