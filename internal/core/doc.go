// Package core derives product table views from a loaded record set.
//
// The package holds the domain logic independent of any transport: the HTTP
// server and the viewctl CLI both drive it through the same types.
//
// # Data Flow
//
//  1. A [RecordSource] is fetched once by [Service.Load]; entries are
//     validated by [BuildRecords] and kept in a [RecordStore].
//  2. A [CriteriaSet] describes grouping, sorting, filtering and column
//     visibility. Setters return a new value; the receiver is never changed.
//  3. [Derive] is a pure function from records and criteria to a
//     [DerivedView]. Filters are AND-combined, groups appear in first-seen
//     order and rows within a group keep a stable sort.
//  4. [Exporter] writes the view's rows as comma-separated text.
//
// # Sessions
//
// [Service] also keeps per-client sessions so a client can change one
// criterion at a time. Updates to a session are serialized and each bumps
// its version. Idle sessions are evicted by [Service.StartSessionJanitor].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - SRC001-SRC005: record source errors
//   - VAL001-VAL007: validation errors
//   - SES001: unknown session
//   - REQ001-REQ003: export and request errors
package core
