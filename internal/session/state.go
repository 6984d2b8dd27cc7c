// Package session holds the presentation state of one lookup session and the
// reducer that reconciles both lookup branches into it.
package session

import (
	"slices"

	"carlens/internal/domain"
)

// Outcome is the derived status of a session
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeLoading
	OutcomeSuccess
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "idle"
	}
}

// State is the renderer-facing view model
type State struct {
	Token          domain.Token
	Manufacturer   string
	Records        []domain.Record
	Image          domain.ImageResult
	Error          string
	Loading        bool
	RecordsSettled bool
	ImageSettled   bool
}

// ImageURL returns the chosen image URL or ""
func (s State) ImageURL() string {
	return s.Image.URL
}

// Outcome derives idle/loading/success/error
func (s State) Outcome() Outcome {
	switch {
	case s.Loading:
		return OutcomeLoading
	case s.Error != "":
		return OutcomeError
	case s.Token == 0:
		return OutcomeIdle
	default:
		return OutcomeSuccess
	}
}

// Equal reports whether two states render identically
func (s State) Equal(o State) bool {
	return s.Token == o.Token &&
		s.Manufacturer == o.Manufacturer &&
		s.Image == o.Image &&
		s.Error == o.Error &&
		s.Loading == o.Loading &&
		s.RecordsSettled == o.RecordsSettled &&
		s.ImageSettled == o.ImageSettled &&
		slices.Equal(s.Records, o.Records)
}

// Presentation is the serialized form of State
type Presentation struct {
	Token        uint64          `json:"token"`
	Manufacturer string          `json:"manufacturer"`
	Status       string          `json:"status"`
	Records      []domain.Record `json:"records"`
	ImageURL     string          `json:"image_url"`
	ImageAuthor  string          `json:"image_author,omitempty"`
	ImageLink    string          `json:"image_link,omitempty"`
	Error        string          `json:"error"`
	Loading      bool            `json:"loading"`
}

// Presentation returns the JSON-friendly form of s
func (s State) Presentation() Presentation {
	records := s.Records
	if records == nil {
		records = []domain.Record{}
	}
	return Presentation{
		Token:        uint64(s.Token),
		Manufacturer: s.Manufacturer,
		Status:       s.Outcome().String(),
		Records:      records,
		ImageURL:     s.Image.URL,
		ImageAuthor:  s.Image.Author,
		ImageLink:    s.Image.HTMLLink,
		Error:        s.Error,
		Loading:      s.Loading,
	}
}

// Reduce computes the next state for event. It never mutates s.
//
// Branch events carrying a token other than s.Token are stale and leave the
// state untouched. Each branch writes its own slice of the state plus the
// shared error field, where the later write wins. Loading clears only once
// both branches of the current token have settled.
func Reduce(s State, event domain.DomainEvent) State {
	switch e := event.(type) {
	case domain.SelectionStartedEvent:
		return State{
			Token:        e.Token,
			Manufacturer: e.Manufacturer,
			Loading:      true,
		}

	case domain.SelectionRejectedEvent:
		s.Error = domain.MsgEmptySelection
		return s
	}

	be, ok := event.(domain.BranchEvent)
	if !ok || be.CycleToken() != s.Token || s.Token == 0 {
		return s
	}

	switch e := be.(type) {
	case domain.RecordsSucceededEvent:
		if s.RecordsSettled {
			return s
		}
		s.Records = slices.Clone(e.Records)
		s.RecordsSettled = true

	case domain.RecordsFailedEvent:
		if s.RecordsSettled {
			return s
		}
		s.Records = nil
		s.Error = e.Message
		s.RecordsSettled = true

	case domain.ImageSucceededEvent:
		if s.ImageSettled {
			return s
		}
		s.Image = e.Image
		s.ImageSettled = true

	case domain.ImageFailedEvent:
		if s.ImageSettled {
			return s
		}
		s.Image = domain.ImageResult{}
		s.Error = e.Message
		s.ImageSettled = true

	default:
		return s
	}

	s.Loading = !(s.RecordsSettled && s.ImageSettled)
	return s
}
