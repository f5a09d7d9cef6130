// Package events carries upload-pipeline outcomes from Kafka to the services.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/y2k2/globa/internal/common"
)

// Kind distinguishes the two pipeline outcomes. Each kind has its own topic.
type Kind int

const (
	KindSucceeded Kind = iota
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is the payload published by the processing pipeline.
// Message is only meaningful for failures.
type Event struct {
	UserID   int64  `json:"userId"`
	RecordID int64  `json:"recordId"`
	Message  string `json:"message"`
}

// Decode parses a message value. Payloads without positive ids are rejected
// with common.ErrorInvalidEvent.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", common.ErrorInvalidEvent, err)
	}
	if ev.UserID <= 0 || ev.RecordID <= 0 {
		return Event{}, fmt.Errorf("%w: userId and recordId are required", common.ErrorInvalidEvent)
	}
	return ev, nil
}

// Encode is the inverse of Decode.
func Encode(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
