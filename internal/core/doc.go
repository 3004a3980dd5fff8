// Package core provides the part library engine: column mapping, CSV import,
// query, edit write-back, merged export and backup/restore.
//
// The package holds all domain logic independent of any UI or transport
// layer. The HTTP shell and the CLI both drive it through [Service].
//
// # Data Flow
//
//  1. [ColumnMapping] says which column of a delimited line holds each attribute
//  2. [PartStore.ImportFrom] inserts one [PartRecord] per data line, in one
//     transaction, ignoring part numbers already stored
//  3. [PartStore.QueryByPatterns] finds parts by part number substring
//  4. A [ResultSet] keeps the query snapshot next to the edited copy;
//     [PartStore.ApplyUpdates] writes back only the records that changed
//  5. [ExportMerge] re-reads a source file and rebuilds matching lines from
//     the stored records
//
// # Backup
//
// [Service.Import] copies the database file to the backup slot before every
// import. [Service.Restore] copies it back unless the two files already hold
// the same bytes.
//
// # Concurrency
//
// Import, update and restore take the single-slot [OperationGate]; a second
// concurrent call fails with [ErrOperationInProgress].
//
// # Error Handling
//
// Typed errors ([ConfigError], [ImportError], [LookupError], [FileError],
// [KeyMismatchError]) are mapped to user messages by [MapError].
package core
