package logging

// Standardized field names for structured logging.
const (
	FieldStore       = "store"
	FieldOperation   = "operation"
	FieldOperationID = "operation_id"
	FieldRecordID    = "record_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
	FieldRoute       = "route"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldUser        = "user"
	FieldFile        = "file_path"
	FieldAction      = "action"
	FieldVersion     = "version"
)
