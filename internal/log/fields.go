package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldError     = "error"

	// Ledger domain fields
	FieldTxnID   = "txn_id"
	FieldMonth   = "month"
	FieldKind    = "kind"
	FieldBackend = "backend"
	FieldAdded   = "added"
	FieldUpdated = "updated"
)
