package mq

import (
	"context"
	"encoding/json"
	"time"
)

// SurveySubmittedChannel carries one event per accepted survey.
const SurveySubmittedChannel = "survey.submitted"

// Survey variants used in event payloads.
const (
	VariantStudent = "student"
	VariantTeacher = "teacher"
)

// SurveySubmitted is published after a survey row is stored.
type SurveySubmitted struct {
	Variant     string    `json:"variant"`
	SurveyID    int       `json:"survey_id"`
	OwnerID     int       `json:"owner_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Events publishes survey lifecycle events. A nil *Events is a no-op
// publisher, so callers never need to check whether a broker is
// configured.
type Events struct {
	mq *MQ
}

// NewEvents constructs an event publisher over the given MQ.
func NewEvents(m *MQ) *Events {
	return &Events{mq: m}
}

// SurveySubmitted publishes a survey.submitted event. Fire-and-forget:
// the returned error is informational and requests must not fail on it.
func (e *Events) SurveySubmitted(ctx context.Context, event SurveySubmitted) error {
	if e == nil || e.mq == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{"variant": event.Variant}
	_, err = e.mq.Publish(ctx, SurveySubmittedChannel, data, attrs)
	return err
}

// Close closes the underlying broker connection.
func (e *Events) Close() error {
	if e == nil || e.mq == nil {
		return nil
	}
	return e.mq.Close()
}
