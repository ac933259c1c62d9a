package entity

// Status is the lifecycle state of a Dataset. Ingestion only ever produces
// StatusUploaded; the others are reserved for a processing pipeline.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusInvalid    Status = "invalid"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusInvalid, StatusProcessing, StatusFailed:
		return true
	default:
		return false
	}
}

// Stage names the ingestion step that failed.
type Stage string

const (
	StageValidation Stage = "validation"
	StageStorage    Stage = "storage"
	StageRegistry   Stage = "registry"
)

// DuplicatePolicy decides what a second upload of the same filename does.
type DuplicatePolicy string

const (
	// DuplicateReplace overwrites the stored bytes and replaces the record in place.
	DuplicateReplace DuplicatePolicy = "replace"

	// DuplicateReject fails the upload with ErrDuplicateFilename.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy accepts "replace" and "reject"; empty means replace.
func ParseDuplicatePolicy(v string) (DuplicatePolicy, bool) {
	switch DuplicatePolicy(v) {
	case "", DuplicateReplace:
		return DuplicateReplace, true
	case DuplicateReject:
		return DuplicateReject, true
	default:
		return "", false
	}
}

// EventType classifies DatasetEvent.
type EventType string

const (
	EventIngested EventType = "ingested"
	EventReplaced EventType = "replaced"
	EventDeleted  EventType = "deleted"
)
