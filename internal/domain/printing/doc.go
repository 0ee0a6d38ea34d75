// Package printing contains the Printing bounded context.
// It owns drafts (editable pre-payment documents), print jobs with their two
// independent state machines (payment and print status), receipts and the
// file records that point at immutable finalized documents.
package printing
