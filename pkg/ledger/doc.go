/*
Package ledger implements the expiring key-value persistence layer used by the chat engine.

Every value is wrapped in an envelope carrying an absolute expiry instant and stored
under a namespace prefix in a ports.Backend. Reads past the expiry evict the entry.
Backend failures never surface to callers: the ledger switches to a degraded mode in
which every read is absent and every write is a no-op.

On top of the raw ledger the package provides Visitors (visitor identity, visit and
conversion bookkeeping) and BackupList (a capped local list of finalized leads).
*/
package ledger
