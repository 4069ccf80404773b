package constants

// CardStatus is the state of a single card moving through the processor.
type CardStatus string

// Stable values (stored as-is in the ledger).
const (
	CardStatusStart           CardStatus = "START"
	CardStatusTextAcquired    CardStatus = "TEXT_ACQUIRED"
	CardStatusFieldsExtracted CardStatus = "FIELDS_EXTRACTED"
	CardStatusNormalized      CardStatus = "NORMALIZED"
	CardStatusWritten         CardStatus = "WRITTEN" // terminal success
	CardStatusFailed          CardStatus = "FAILED"  // terminal failure
	CardStatusCanceled        CardStatus = "CANCELED"
)

// Terminal reports whether no further transition is possible.
func (s CardStatus) Terminal() bool {
	return s == CardStatusWritten || s == CardStatusFailed || s == CardStatusCanceled
}

// RunStatus is the state of a whole batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusAborted  RunStatus = "ABORTED"
)
