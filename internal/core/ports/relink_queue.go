package ports

// RelinkQueue accepts account ids for asynchronous relinking.
type RelinkQueue interface {
	// Enqueue returns false when the job could not be queued.
	Enqueue(accountID string) bool
}
