package storage

// ApiStore defines the complete set of non-privileged operations needed by
// the API surface. Components should depend on the more granular interfaces
// where they can.
type ApiStore interface {
	AccountStore
	TransactionStore
}

// Storage defines the root interface for the entire data layer.
// Only the transfer engine should hold the full interface, since it includes
// the privileged commit operations.
type Storage interface {
	ApiStore
	TransferCommitter
}
