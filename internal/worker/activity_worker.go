package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
)

// EventCounter records complaint events; observability.Metrics satisfies it.
type EventCounter interface {
	RecordComplaintEvent(eventType, status string)
}

// ActivityRecorder logs complaint lifecycle events and counts them.
type ActivityRecorder struct {
	logger  *zap.Logger
	counter EventCounter
}

// NewActivityRecorder creates the recorder. counter may be nil.
func NewActivityRecorder(logger *zap.Logger, counter EventCounter) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{logger: logger, counter: counter}
}

// StartActivityWorker subscribes the recorder to every complaint event.
func StartActivityWorker(dispatcher events.Dispatcher, recorder *ActivityRecorder) {
	if dispatcher == nil || recorder == nil {
		return
	}
	dispatcher.Subscribe(events.EventComplaintCreated, recorder.Handle)
	dispatcher.Subscribe(events.EventComplaintUpdated, recorder.Handle)
	dispatcher.Subscribe(events.EventComplaintDeleted, recorder.Handle)
}

// Handle is the events.EventHandler for complaint events.
func (r *ActivityRecorder) Handle(_ context.Context, event events.Event) error {
	status := eventStatus(event)
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.String("status", string(status)),
	}
	if p, ok := event.Payload.(events.ComplaintUpdatedPayload); ok {
		fields = append(fields,
			zap.String("old_status", string(p.OldStatus)),
			zap.Strings("changed", p.Changed))
	}
	r.logger.Info(string(event.Type), fields...)

	if r.counter != nil {
		r.counter.RecordComplaintEvent(string(event.Type), string(status))
	}
	return nil
}

func eventStatus(event events.Event) domain.ComplaintStatus {
	switch p := event.Payload.(type) {
	case events.ComplaintCreatedPayload:
		return p.Status
	case events.ComplaintUpdatedPayload:
		return p.NewStatus
	case events.ComplaintDeletedPayload:
		return p.Status
	default:
		return ""
	}
}
