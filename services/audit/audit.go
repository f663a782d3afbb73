package audit

import (
	"context"
	"time"

	"slotwise/database"
	"slotwise/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuditService records engine events best-effort: a failed write is logged
// and swallowed, never surfaced to the primary operation.
type AuditService interface {
	Record(ctx context.Context, eventCode, actor string, subjectIDs []string, outcome string)
}

// Event is an audit trail record.
type Event struct {
	ID         string    `bson:"id"`
	EventCode  string    `bson:"eventCode"`
	Actor      string    `bson:"actor,omitempty"`
	SubjectIDs []string  `bson:"subjectIds"`
	Outcome    string    `bson:"outcome"`
	RecordedAt time.Time `bson:"recordedAt"`
}

type mongoAuditService struct {
	coll *mongo.Collection
}

// NewMongoAuditService constructs the default AuditService.
func NewMongoAuditService() AuditService {
	return &mongoAuditService{coll: database.DB().Collection("audit_events")}
}

func (s *mongoAuditService) Record(ctx context.Context, eventCode, actor string, subjectIDs []string, outcome string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	ev := Event{
		ID:         uuid.New().String(),
		EventCode:  eventCode,
		Actor:      actor,
		SubjectIDs: subjectIDs,
		Outcome:    outcome,
		RecordedAt: time.Now(),
	}
	if _, err := s.coll.InsertOne(ctx, ev); err != nil {
		utils.GetLogger().Warn("audit record dropped",
			zap.String("eventCode", eventCode),
			zap.Error(err),
		)
	}
}

// NopAuditService discards all records, for tests.
type NopAuditService struct{}

func (NopAuditService) Record(context.Context, string, string, []string, string) {}
