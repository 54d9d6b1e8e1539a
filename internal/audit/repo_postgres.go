package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends to call_audit_events. It never issues UPDATE or DELETE.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (p *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO call_audit_events (
  id, type, operator_id, role, ip_address, call_id, state, disconnect_cause, message, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := p.db.ExecContext(ctx, q,
		e.ID, string(e.Type), e.OperatorID, e.Role, e.IPAddress,
		e.CallID, e.State, e.DisconnectCause, e.Message, e.CreatedAt,
	)
	return err
}

func (p *PostgresRepo) List(ctx context.Context, callID, limit int) ([]Event, error) {
	const q = `
SELECT id, type, operator_id, role, ip_address, call_id, state, disconnect_cause, message, created_at
FROM call_audit_events
WHERE call_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := p.db.QueryContext(ctx, q, callID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			e   Event
			typ string
		)
		if err := rows.Scan(&e.ID, &typ, &e.OperatorID, &e.Role, &e.IPAddress,
			&e.CallID, &e.State, &e.DisconnectCause, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
