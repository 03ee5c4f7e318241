package promo

import (
	"encoding/json"
	"strings"
)

// CodeEntry is one row of the exchange code table
type CodeEntry struct {
	Code    string
	Expired bool
}

// CodeList holds the codes of one fetch in document order
type CodeList []CodeEntry

// Event is the payload sent to the notifier for newly discovered codes
type Event struct {
	Active  []string `json:"active"`
	Expired []string `json:"expired"`
}

// Codes returns the code strings in order
func (l CodeList) Codes() []string {
	codes := make([]string, 0, len(l))
	for _, entry := range l {
		codes = append(codes, entry.Code)
	}
	return codes
}

// String joins the codes with spaces, for logging
func (l CodeList) String() string {
	return strings.Join(l.Codes(), " ")
}

// Partition splits the list into active and expired codes, preserving order
func (l CodeList) Partition() Event {
	event := Event{
		Active:  []string{},
		Expired: []string{},
	}
	for _, entry := range l {
		if entry.Expired {
			event.Expired = append(event.Expired, entry.Code)
		} else {
			event.Active = append(event.Active, entry.Code)
		}
	}
	return event
}

// JSON encodes the event as {"active": [...], "expired": [...]}
func (e Event) JSON() ([]byte, error) {
	if e.Active == nil {
		e.Active = []string{}
	}
	if e.Expired == nil {
		e.Expired = []string{}
	}
	return json.Marshal(e)
}

// Len returns the number of codes in the event
func (e Event) Len() int {
	return len(e.Active) + len(e.Expired)
}
