// pkg/archive/progress.go
package archive

// ProgressCallback is called for various progress events
type ProgressCallback func(event ProgressEvent)

// ProgressEvent contains progress information
type ProgressEvent struct {
	Type       EventType
	EntryName  string
	Dir        bool
	Current    int64
	Total      int64
	EntryBytes uint64
	TotalBytes uint64
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventEntry
	EventComplete
	EventError
)
