package pipeline

import (
	"fmt"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/document"
)

// GenerateEvent is the payload the start API sends to the worker. It is the
// JSON form of Request with the page format given by name.
type GenerateEvent struct {
	Type          string              `json:"type"`
	JobID         string              `json:"jobId"`
	SessionID     string              `json:"sessionId"`
	Photos        []album.PhotoInput  `json:"photos"`
	Questionnaire album.Questionnaire `json:"questionnaire,omitempty"`
	PageCount     int                 `json:"pageCount,omitempty"`
	IsSample      bool                `json:"isSample,omitempty"`
	Groupings     [][]string          `json:"groupings,omitempty"`
	Format        string              `json:"format,omitempty"`
	BleedMM       float64             `json:"bleedMm,omitempty"`
}

// EventTypeGenerate is the only event type the worker accepts.
const EventTypeGenerate = "album.generate"

// Request resolves the event into a Request. An empty format name selects
// defaultFormat.
func (e GenerateEvent) Request(defaultFormat string) (Request, error) {
	name := e.Format
	if name == "" {
		name = defaultFormat
	}
	format, err := document.Lookup(name)
	if err != nil {
		return Request{}, fmt.Errorf("event %s: %w", e.JobID, err)
	}
	if e.BleedMM > 0 {
		format = format.WithBleed(e.BleedMM)
	}
	return Request{
		JobID:         e.JobID,
		SessionID:     e.SessionID,
		Photos:        e.Photos,
		Questionnaire: e.Questionnaire,
		PageCount:     e.PageCount,
		IsSample:      e.IsSample,
		Groupings:     e.Groupings,
		Format:        format,
	}, nil
}
