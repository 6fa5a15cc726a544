package worker

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const reconcileTotalsQuery = `
	UPDATE contact_lists cl
	SET total_contacts = counted.n
	FROM (
		SELECT l.id, COUNT(c.id) AS n
		FROM contact_lists l
		LEFT JOIN contacts c ON c.contact_list_id = l.id
		GROUP BY l.id
	) counted
	WHERE cl.id = counted.id
		AND cl.total_contacts <> counted.n
		AND cl.created_at < NOW() - make_interval(secs => $1)
	RETURNING cl.id, cl.total_contacts
`

// ListTotalWorker periodically rewrites contact_lists.total_contacts from the stored contacts.
// It repairs lists whose total could not be corrected at the end of an import.
// Lists younger than one interval are skipped so imports still inserting batches are left alone.
type ListTotalWorker struct {
	db           *sql.DB
	tickInterval time.Duration
	grace        time.Duration
	log          *zap.Logger
}

func NewListTotalWorker(db *sql.DB, interval time.Duration, log *zap.Logger) *ListTotalWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListTotalWorker{
		db:           db,
		tickInterval: interval,
		grace:        interval,
		log:          log,
	}
}

func (w *ListTotalWorker) Start(ctx context.Context) {
	w.log.Info("list total worker started", zap.Duration("interval", w.tickInterval), zap.Duration("grace", w.grace))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("list total worker stopped")
			return
		case <-ticker.C:
			w.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass and returns how many lists were corrected.
func (w *ListTotalWorker) Reconcile(ctx context.Context) int {
	rows, err := w.db.QueryContext(ctx, reconcileTotalsQuery, w.grace.Seconds())
	if err != nil {
		w.log.Error("failed to reconcile list totals", zap.Error(err))
		return 0
	}
	defer rows.Close()

	fixed := 0
	for rows.Next() {
		var (
			listID string
			total  int
		)
		if err := rows.Scan(&listID, &total); err != nil {
			w.log.Warn("failed to scan reconciled list", zap.Error(err))
			continue
		}
		w.log.Info("contact list total corrected", zap.String("contact_list_id", listID), zap.Int("total_contacts", total))
		fixed++
	}
	if err := rows.Err(); err != nil {
		w.log.Error("list total reconciliation interrupted", zap.Error(err))
	}
	return fixed
}
