package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionPeriodCreate    = "payroll.period.create"
	ActionPeriodGenerate  = "payroll.period.generate"
	ActionPeriodFinalize  = "payroll.period.finalize"
	ActionPeriodArchive   = "payroll.period.archive"
	ActionPeriodUnarchive = "payroll.period.unarchive"
	ActionEntryAllowance  = "payroll.entry.allowance"
	ActionEntryPaid       = "payroll.entry.paid"
	ActionEntryUnpaid     = "payroll.entry.unpaid"
	ActionLocumStatus     = "locum.shift.status"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, orgID, actorID, action, entityType, entityID, requestID string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (org_id, actor_id, action, entity_type, entity_id, request_id, details)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, orgID, actorID, action, entityType, entityID, requestID, detailsJSON)
	return err
}

func (s *Service) List(ctx context.Context, orgID string, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, request_id, created_at, details
    FROM audit_events
    WHERE org_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Details); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
