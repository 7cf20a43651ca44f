package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// TicketRepository stores imported ticket rows verbatim as JSONB so that
// normalization can evolve without re-importing.
type TicketRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool, tm *TransactionManager) *TicketRepository {
	return &TicketRepository{pool: pool, tm: tm}
}

// ImportTickets inserts a batch in one transaction. Rows carrying an id
// replace the previous import of the same ticket.
func (r *TicketRepository) ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error) {
	batch := &pgx.Batch{}
	for i, raw := range tickets {
		doc, err := json.Marshal(raw)
		if err != nil {
			return 0, fmt.Errorf("encode ticket %d: %w", i, err)
		}

		record := domain.NormalizeTicket(raw)
		if record.ID == "" {
			batch.Queue(`
				INSERT INTO ticket_records (external_id, technician, raw)
				VALUES (NULL, $1, $2)`,
				record.Technician, doc,
			)
			continue
		}
		batch.Queue(`
			INSERT INTO ticket_records (external_id, technician, raw)
			VALUES ($1, $2, $3)
			ON CONFLICT (external_id) WHERE external_id IS NOT NULL
			DO UPDATE SET technician = EXCLUDED.technician, raw = EXCLUDED.raw, imported_at = now()`,
			record.ID, record.Technician, doc,
		)
	}

	imported := 0
	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("insert ticket %d: %w", i, err)
			}
			imported += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// ListTickets returns every stored row in import order.
func (r *TicketRepository) ListTickets(ctx context.Context) ([]domain.RawTicket, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, `SELECT raw FROM ticket_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.RawTicket{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		raw := domain.RawTicket{}
		if err := json.Unmarshal(doc, &raw); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		tickets = append(tickets, raw)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) CountTickets(ctx context.Context) (int64, error) {
	var n int64
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM ticket_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}
