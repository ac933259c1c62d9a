package entity

// DatasetEvent is published after a registry change has been committed.
type DatasetEvent struct {
	EventID int64
	Type    EventType
	Dataset Dataset
}
