package calls

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository persists the latest observed snapshot of each call.
type Repository interface {
	Get(ctx context.Context, callID int) (*Record, error)
	Put(ctx context.Context, r *Record) error
}

// Lister enumerates every stored snapshot, ordered by call id.
type Lister interface {
	List(ctx context.Context) ([]*Record, error)
}

// MemoryRepo is an in-memory repository for tests and local runs.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[int][]byte
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{records: map[int][]byte{}} }

// Records are kept as parcels so callers never share a *Record with the repo.
func (m *MemoryRepo) Get(ctx context.Context, callID int) (*Record, error) {
	m.mu.Lock()
	b, ok := m.records[callID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Unmarshal(b)
}

func (m *MemoryRepo) Put(ctx context.Context, r *Record) error {
	b := Marshal(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.CallID()] = b
	return nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*Record, error) {
	m.mu.Lock()
	parcels := make([][]byte, 0, len(m.records))
	for _, b := range m.records {
		parcels = append(parcels, b)
	}
	m.mu.Unlock()

	out := make([]*Record, 0, len(parcels))
	for _, b := range parcels {
		r, err := Unmarshal(b)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].callID < out[j].callID })
	return out, nil
}

// PostgresRepo stores records in the call_records table.
//
// Expected schema:
//
//	CREATE TABLE call_records (
//	  call_id                INT PRIMARY KEY,
//	  number                 TEXT NOT NULL DEFAULT '',
//	  state                  INT NOT NULL,
//	  number_presentation    INT NOT NULL,
//	  cnap_name_presentation INT NOT NULL,
//	  cnap_name              TEXT NOT NULL DEFAULT '',
//	  disconnect_cause       TEXT NOT NULL,
//	  updated_at             TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

const selectRecords = `
SELECT call_id, number, state, number_presentation, cnap_name_presentation, cnap_name, disconnect_cause
FROM call_records
`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one call_records row. Rows go through the same boundary
// checks as parcels.
func scanRecord(row rowScanner) (*Record, error) {
	var (
		id                 int
		number, cnap, name string
		state, np, cnp     int32
	)
	if err := row.Scan(&id, &number, &state, &np, &cnp, &cnap, &name); err != nil {
		return nil, err
	}

	r := NewRecord(id)
	r.number = number
	r.cnapName = cnap
	var err error
	if r.state, err = StateFromInt(state); err != nil {
		return nil, err
	}
	if r.numberPresentation, err = PresentationFromInt(np); err != nil {
		return nil, err
	}
	if r.cnapNamePresentation, err = PresentationFromInt(cnp); err != nil {
		return nil, err
	}
	if r.disconnectCause, err = ParseDisconnectCause(name); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *PostgresRepo) Get(ctx context.Context, callID int) (*Record, error) {
	r, err := scanRecord(p.db.QueryRowContext(ctx, selectRecords+"WHERE call_id = $1", callID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *PostgresRepo) List(ctx context.Context) ([]*Record, error) {
	rows, err := p.db.QueryContext(ctx, selectRecords+"ORDER BY call_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepo) Put(ctx context.Context, r *Record) error {
	const q = `
INSERT INTO call_records (
  call_id, number, state, number_presentation, cnap_name_presentation, cnap_name, disconnect_cause, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
)
ON CONFLICT (call_id)
DO UPDATE SET number = EXCLUDED.number,
              state = EXCLUDED.state,
              number_presentation = EXCLUDED.number_presentation,
              cnap_name_presentation = EXCLUDED.cnap_name_presentation,
              cnap_name = EXCLUDED.cnap_name,
              disconnect_cause = EXCLUDED.disconnect_cause,
              updated_at = EXCLUDED.updated_at
`
	_, err := p.db.ExecContext(ctx, q,
		r.CallID(),
		r.Number(),
		int32(r.State()),
		int32(r.NumberPresentation()),
		int32(r.CnapNamePresentation()),
		r.CnapName(),
		r.DisconnectCause().String(),
		p.clock().UTC(),
	)
	return err
}
