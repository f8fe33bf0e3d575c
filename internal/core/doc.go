// Package core provides the business logic for inbound receiving: matching
// scanned items against an expected-inventory list.
//
// This package has no UI or storage dependencies. The web server, the
// console scanner and tests all drive the same [Service].
//
// # Architecture
//
//   - Ingest: [ReadRows] parses an uploaded .xlsx or .csv file and
//     [ParseRows] fans each style/color row out into one [SkuRecord] per size.
//   - Barcode: [InterpretBarcode] decodes STYLE/COLOR/SIZE scans.
//   - Ledger: [Ledger] holds expected and actual counts plus the per-SKU
//     scan history.
//   - Report: [BuildReport] classifies every SKU and [WriteReport] renders
//     the workbook.
//   - Session: [Service] serializes every operation, persists the ledger
//     through a [Store], and gates reset behind [ResetFlow].
//
// # Session Lifecycle
//
//  1. [NewService] restores the saved state, if any
//  2. [Service.Upload] replaces the expected set and clears scans
//  3. [Service.Scan] is called once per barcode
//  4. [Service.Export] writes the report, then clears scans and actual
//     counts while keeping the expected set
//
// Every mutation is saved before it returns. If the save fails, the
// in-memory ledger is rolled back so memory and storage never disagree.
//
// # Error Handling
//
// Technical errors are mapped to operator messages using [MapError]:
//
//   - SCAN001-SCAN003: rejected scans
//   - FILE001-FILE003: upload problems
//   - RESET001, STORE001, SOUND001: session errors
//
// # Audit Logging
//
// Every operation writes a structured "audit" log record with a severity:
//
//   - Low: scans, session restore
//   - High: uploads, exports
//   - Critical: resets
package core
