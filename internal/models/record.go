package models

// Record is anything the resource stores can hold: a server-owned entity
// identified by a stable key.
type Record interface {
	Key() string
}
