package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// RecordStore persists extracted records in PostgreSQL.
//
// Batch methods write all rows in one transaction; any failure rolls the
// whole batch back. The *Direct variants run each row in autocommit mode so
// a single bad row does not discard the rest.
type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecordStore) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS schedule_tasks (
	task_id BIGINT PRIMARY KEY,
	task_name TEXT NOT NULL,
	duration_days INTEGER NOT NULL,
	start_date DATE NOT NULL,
	finish_date DATE NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cost_items (
	id BIGSERIAL PRIMARY KEY,
	item_name TEXT NOT NULL,
	quantity NUMERIC NOT NULL,
	unit_price_yen NUMERIC NOT NULL,
	total_cost_yen NUMERIC NOT NULL,
	cost_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS regulatory_rules (
	rule_id TEXT PRIMARY KEY,
	rule_summary TEXT NOT NULL,
	measurement_basis TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cost_items_cost_type ON cost_items(cost_type);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const upsertTaskSQL = `
INSERT INTO schedule_tasks (task_id, task_name, duration_days, start_date, finish_date, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (task_id) DO UPDATE SET
	task_name = EXCLUDED.task_name,
	duration_days = EXCLUDED.duration_days,
	start_date = EXCLUDED.start_date,
	finish_date = EXCLUDED.finish_date,
	updated_at = now()
`

const insertCostItemSQL = `
INSERT INTO cost_items (item_name, quantity, unit_price_yen, total_cost_yen, cost_type)
VALUES ($1, $2, $3, $4, $5)
`

const upsertRuleSQL = `
INSERT INTO regulatory_rules (rule_id, rule_summary, measurement_basis, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (rule_id) DO UPDATE SET
	rule_summary = EXCLUDED.rule_summary,
	measurement_basis = EXCLUDED.measurement_basis,
	updated_at = now()
`

func (r *RecordStore) UpsertScheduleTasks(ctx context.Context, tasks []domain.ScheduleTask) (int, error) {
	return r.inTx(ctx, "upsert schedule tasks", len(tasks), func(tx *sql.Tx, i int) error {
		t := tasks[i]
		_, err := tx.ExecContext(ctx, upsertTaskSQL, t.TaskID, t.TaskName, t.DurationDays, t.StartDate.Time, t.FinishDate.Time)
		return err
	})
}

func (r *RecordStore) InsertCostItems(ctx context.Context, items []domain.CostItem) (int, error) {
	return r.inTx(ctx, "insert cost items", len(items), func(tx *sql.Tx, i int) error {
		it := items[i]
		_, err := tx.ExecContext(ctx, insertCostItemSQL, it.ItemName, it.Quantity, it.UnitPriceYen, it.TotalCostYen, it.CostType)
		return err
	})
}

func (r *RecordStore) UpsertRegulatoryRules(ctx context.Context, rules []domain.RegulatoryRule) (int, error) {
	return r.inTx(ctx, "upsert regulatory rules", len(rules), func(tx *sql.Tx, i int) error {
		rl := rules[i]
		_, err := tx.ExecContext(ctx, upsertRuleSQL, rl.RuleID, rl.RuleSummary, rl.MeasurementBasis)
		return err
	})
}

// inTx executes n row writes in one transaction, all-or-nothing.
func (r *RecordStore) inTx(ctx context.Context, operation string, n int, write func(tx *sql.Tx, i int) error) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s tx: %w", operation, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := 0; i < n; i++ {
		if err := write(tx, i); err != nil {
			return 0, fmt.Errorf("%s row %d: %w", operation, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s tx: %w", operation, err)
	}
	return n, nil
}

func (r *RecordStore) UpsertScheduleTasksDirect(ctx context.Context, tasks []domain.ScheduleTask) (int, error) {
	written := 0
	for _, t := range tasks {
		if _, err := r.db.ExecContext(ctx, upsertTaskSQL, t.TaskID, t.TaskName, t.DurationDays, t.StartDate.Time, t.FinishDate.Time); err != nil {
			return written, fmt.Errorf("upsert schedule task %d: %w", t.TaskID, err)
		}
		written++
	}
	return written, nil
}

func (r *RecordStore) InsertCostItemsDirect(ctx context.Context, items []domain.CostItem) (int, error) {
	written := 0
	for _, it := range items {
		if _, err := r.db.ExecContext(ctx, insertCostItemSQL, it.ItemName, it.Quantity, it.UnitPriceYen, it.TotalCostYen, it.CostType); err != nil {
			return written, fmt.Errorf("insert cost item %q: %w", it.ItemName, err)
		}
		written++
	}
	return written, nil
}

func (r *RecordStore) UpsertRegulatoryRulesDirect(ctx context.Context, rules []domain.RegulatoryRule) (int, error) {
	written := 0
	for _, rl := range rules {
		if _, err := r.db.ExecContext(ctx, upsertRuleSQL, rl.RuleID, rl.RuleSummary, rl.MeasurementBasis); err != nil {
			return written, fmt.Errorf("upsert regulatory rule %s: %w", rl.RuleID, err)
		}
		written++
	}
	return written, nil
}

func (r *RecordStore) ListScheduleTasks(ctx context.Context, limit int) ([]domain.ScheduleTask, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT task_id, task_name, duration_days, start_date, finish_date
FROM schedule_tasks
ORDER BY task_id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query schedule tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduleTask
	for rows.Next() {
		var t domain.ScheduleTask
		var start, finish time.Time
		if err := rows.Scan(&t.TaskID, &t.TaskName, &t.DurationDays, &start, &finish); err != nil {
			return nil, fmt.Errorf("scan schedule task: %w", err)
		}
		t.StartDate = domain.Date{Time: start}
		t.FinishDate = domain.Date{Time: finish}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *RecordStore) ListCostItems(ctx context.Context, limit int) ([]domain.CostItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT item_name, quantity, unit_price_yen, total_cost_yen, cost_type
FROM cost_items
ORDER BY id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cost items: %w", err)
	}
	defer rows.Close()

	var items []domain.CostItem
	for rows.Next() {
		var it domain.CostItem
		if err := rows.Scan(&it.ItemName, &it.Quantity, &it.UnitPriceYen, &it.TotalCostYen, &it.CostType); err != nil {
			return nil, fmt.Errorf("scan cost item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *RecordStore) ListRegulatoryRules(ctx context.Context, limit int) ([]domain.RegulatoryRule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT rule_id, rule_summary, measurement_basis
FROM regulatory_rules
ORDER BY rule_id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query regulatory rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.RegulatoryRule
	for rows.Next() {
		var rl domain.RegulatoryRule
		if err := rows.Scan(&rl.RuleID, &rl.RuleSummary, &rl.MeasurementBasis); err != nil {
			return nil, fmt.Errorf("scan regulatory rule: %w", err)
		}
		rules = append(rules, rl)
	}
	return rules, rows.Err()
}

// ClearAll truncates every record table in one transaction and reports how
// many rows each table held.
func (r *RecordStore) ClearAll(ctx context.Context) (domain.ClearCounts, error) {
	var counts domain.ClearCounts

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, target := range []struct {
		table string
		out   *int
	}{
		{"schedule_tasks", &counts.TasksDeleted},
		{"cost_items", &counts.CostItemsDeleted},
		{"regulatory_rules", &counts.RulesDeleted},
	} {
		row := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, target.table))
		if err := row.Scan(target.out); err != nil {
			return domain.ClearCounts{}, fmt.Errorf("count %s: %w", target.table, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`TRUNCATE TABLE %s`, target.table)); err != nil {
			return domain.ClearCounts{}, fmt.Errorf("truncate %s: %w", target.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.ClearCounts{}, fmt.Errorf("commit clear tx: %w", err)
	}
	return counts, nil
}
