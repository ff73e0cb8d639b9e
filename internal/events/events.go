package events

import (
	"context"

	"github.com/gridstat/diversity/internal/model"
)

// Event topic constants
const (
	TopicRunStarted     = "diversity.run.started"
	TopicRunCompleted   = "diversity.run.completed"
	TopicRunFailed      = "diversity.run.failed"
	TopicSchemaExtended = "diversity.schema.extended"
	TopicFieldsDropped  = "diversity.fields.dropped"
)

// Event is a publishable run lifecycle notification. Each event type
// knows its own subject, so callers cannot pair a payload with the
// wrong topic.
type Event interface {
	Topic() string
}

type RunStarted struct {
	Run *model.IndexRun `json:"run"`
}

func (RunStarted) Topic() string { return TopicRunStarted }

type RunCompleted struct {
	Run *model.IndexRun `json:"run"`
}

func (RunCompleted) Topic() string { return TopicRunCompleted }

type RunFailed struct {
	Run    *model.IndexRun `json:"run"`
	Reason string          `json:"reason"`
}

func (RunFailed) Topic() string { return TopicRunFailed }

type SchemaExtended struct {
	Table string `json:"table"`
	Field string `json:"field"`
	RunID string `json:"run_id"`
}

func (SchemaExtended) Topic() string { return TopicSchemaExtended }

type FieldsDropped struct {
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
	RunID  string   `json:"run_id"`
}

func (FieldsDropped) Topic() string { return TopicFieldsDropped }

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
