package domain

import "fmt"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSelectionStarted  EventType = "SelectionStarted"
	EventSelectionRejected EventType = "SelectionRejected"
	EventRecordsSucceeded  EventType = "RecordsSucceeded"
	EventRecordsFailed     EventType = "RecordsFailed"
	EventImageSucceeded    EventType = "ImageSucceeded"
	EventImageFailed       EventType = "ImageFailed"
	EventStateChanged      EventType = "StateChanged"
)

// Token identifies one fetch cycle. Tokens increase monotonically per session.
type Token uint64

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// BranchEvent is an outcome of one lookup branch, tagged with the token it was dispatched under
type BranchEvent interface {
	DomainEvent
	CycleToken() Token
}

// ErrorKind classifies a branch failure
type ErrorKind int

const (
	NoResults ErrorKind = iota + 1
	RequestFailed
	InvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case NoResults:
		return "no_results"
	case RequestFailed:
		return "request_failed"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// User-facing messages
const (
	MsgNoImages       = "No images found for this car make."
	MsgImageFailed    = "Failed to fetch image."
	MsgEmptySelection = "Please enter a car make."
)

// RecordsMessage returns the message shown for a failed records lookup
func RecordsMessage(kind RecordsKind, errKind ErrorKind) string {
	if errKind == NoResults {
		return fmt.Sprintf("No %s found.", kind.Noun())
	}
	return fmt.Sprintf("Failed to fetch %s.", kind.Noun())
}

// ImageMessage returns the message shown for a failed image lookup
func ImageMessage(errKind ErrorKind) string {
	if errKind == NoResults {
		return MsgNoImages
	}
	return MsgImageFailed
}

// SelectionStartedEvent resets presentation state for a new make
type SelectionStartedEvent struct {
	Token        Token
	Manufacturer string
}

func (e SelectionStartedEvent) Type() EventType   { return EventSelectionStarted }
func (e SelectionStartedEvent) CycleToken() Token { return e.Token }

// SelectionRejectedEvent is emitted when the requested make fails validation
type SelectionRejectedEvent struct {
	Input string
}

func (e SelectionRejectedEvent) Type() EventType { return EventSelectionRejected }

// RecordsSucceededEvent carries the capped records for a cycle
type RecordsSucceededEvent struct {
	Token   Token
	Records []Record
}

func (e RecordsSucceededEvent) Type() EventType   { return EventRecordsSucceeded }
func (e RecordsSucceededEvent) CycleToken() Token { return e.Token }

// RecordsFailedEvent is emitted when the records branch yields nothing usable
type RecordsFailedEvent struct {
	Token   Token
	Kind    ErrorKind
	Message string
	Err     error
}

func (e RecordsFailedEvent) Type() EventType   { return EventRecordsFailed }
func (e RecordsFailedEvent) CycleToken() Token { return e.Token }

// ImageSucceededEvent carries the chosen image for a cycle
type ImageSucceededEvent struct {
	Token Token
	Image ImageResult
}

func (e ImageSucceededEvent) Type() EventType   { return EventImageSucceeded }
func (e ImageSucceededEvent) CycleToken() Token { return e.Token }

// ImageFailedEvent is emitted when the image branch yields nothing usable
type ImageFailedEvent struct {
	Token   Token
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ImageFailedEvent) Type() EventType   { return EventImageFailed }
func (e ImageFailedEvent) CycleToken() Token { return e.Token }
