// Package core provides the comparison logic for regional country statistics.
//
// This package is the heart of the comparison tool, containing all domain
// logic independent of any UI or transport layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few small types:
//
//   - [Store]: the region directory and merged country records, loaded once
//     and shared read-only.
//   - [Selection]: the countries chosen for comparison, in selection order.
//   - [Catalog]: the indicator columns in declaration order with active flags.
//   - [BuildTable]: turns the above into a [TableModel].
//   - [Workspace]: one user's application context tying them together.
//
// # Ordering
//
// Three orders matter and each has one owner:
//
//   - Table rows follow the active region's directory order.
//   - Table columns follow catalog declaration order.
//   - Selection chips follow selection order.
//
// A country selected while another region was active keeps its membership
// after the region changes, but gets no row until its region is active
// again. [Workspace.Stale] lists such names.
//
// # Formatting
//
// [FormatNumber] scales large values to 億 (1e8) and 百万 (1e6), groups
// thousands with commas, and renders missing values as [NotAvailable].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError]:
//
//   - SEL001: empty selection ([ErrEmptySelection])
//   - REG001, IND001: unknown region or indicator
//   - DATA001-DATA003: dataset and export errors
//   - REQ001-REQ003, RATE001: request errors
package core
