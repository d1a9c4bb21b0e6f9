// Package core normalizes ticket spreadsheets and queries the resulting records.
//
// This package holds all domain logic independent of any UI, file format or
// store. It is used by the web handlers, the ticketctl CLI and tests without
// modification.
//
// # Normalization
//
// A [RawSheet] is a grid whose first row is the header. [MapHeader] resolves
// header labels to the closed [Field] set once per sheet; unknown columns are
// dropped. [BuildRecords] turns the data rows into [Record] values, skipping
// blank rows and rendering date fields as DateText:
//
//	1/1/2021  12:00:00 PM
//
// Dates may arrive as spreadsheet serials, free text or structured values;
// [NormalizeDate] accepts all three and is idempotent.
//
// # Editing
//
// [DedupeSheet] keeps the first row per ticket number and [SortSheet] orders
// data rows with [Compare], which sorts numbers numerically, dates by instant
// and everything else as case-insensitive text. Both return a new sheet; a
// [Session] swaps it in atomically.
//
// # Listing
//
// [Query] filters by owner, month/day and free text, sorts stably and returns
// one [Page] of [PageSize] records. [ViewState] keeps the current selection
// across requests.
//
// # Persistence
//
// Records are written through a [RecordStore] with [SaveRecords], which sends
// sequential chunks of [SaveChunkSize]. A failure returns a [PersistenceError]
// carrying the number of records already committed.
//
// # Error Handling
//
// [MapError] turns any error into a [UserMessage] with a support code
// (FILE, COL, DB, UPL, RATE, ERR000).
package core
