package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"SignalSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists signals, outcomes and run summaries to a SQLite
// database. One writer (the batch runner), mutex-guarded.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a batch is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id        TEXT PRIMARY KEY,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			entry     REAL NOT NULL,
			target    REAL NOT NULL,
			stop_loss REAL NOT NULL,
			date      TEXT NOT NULL,
			sector    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_date ON signals(date)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			signal_id         TEXT PRIMARY KEY,
			symbol            TEXT,
			date              TEXT,
			entry_hit         INTEGER NOT NULL,
			entry_time        INTEGER,
			target_hit        INTEGER NOT NULL,
			target_time       INTEGER,
			stop_hit          INTEGER NOT NULL,
			stop_time         INTEGER,
			result            TEXT NOT NULL,
			minutes_to_target INTEGER,
			minutes_to_stop   INTEGER,
			origin            TEXT NOT NULL,
			updated_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_date ON outcomes(date)`,

		`CREATE TABLE IF NOT EXISTS runs (
			run_id          TEXT PRIMARY KEY,
			date            TEXT NOT NULL,
			total           INTEGER,
			rejected        INTEGER,
			primary_count   INTEGER,
			secondary_count INTEGER,
			synthetic_count INTEGER,
			no_data_count   INTEGER,
			started_at      INTEGER,
			finished_at     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) SaveSignals(sigs []model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save signals: %w", err)
	}
	defer tx.Rollback()

	for _, s := range sigs {
		if _, err := tx.Exec(`INSERT INTO signals (id, symbol, side, entry, target, stop_loss, date, sector)
			VALUES (?,?,?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				symbol=excluded.symbol, side=excluded.side, entry=excluded.entry,
				target=excluded.target, stop_loss=excluded.stop_loss,
				date=excluded.date, sector=excluded.sector`,
			s.ID, s.Symbol, string(s.Side), s.Entry, s.Target, s.StopLoss, s.Date, s.Sector,
		); err != nil {
			return fmt.Errorf("save signal %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) SignalsForDate(date string) ([]model.Signal, error) {
	rows, err := r.db.Query(`SELECT id, symbol, side, entry, target, stop_loss, date, sector
		FROM signals WHERE date = ? ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var sigs []model.Signal
	for rows.Next() {
		var s model.Signal
		var side, sector sql.NullString
		if err := rows.Scan(&s.ID, &s.Symbol, &side, &s.Entry, &s.Target, &s.StopLoss, &s.Date, &sector); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		s.Side = model.Side(side.String)
		s.Sector = sector.String
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

// UpsertOutcome writes the record wholesale: a re-run replaces every column,
// never a partial mutation.
func (r *SQLiteRecorder) UpsertOutcome(o *model.BacktestOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO outcomes
		(signal_id, symbol, date, entry_hit, entry_time, target_hit, target_time,
		 stop_hit, stop_time, result, minutes_to_target, minutes_to_stop, origin, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(signal_id) DO UPDATE SET
			symbol=excluded.symbol, date=excluded.date,
			entry_hit=excluded.entry_hit, entry_time=excluded.entry_time,
			target_hit=excluded.target_hit, target_time=excluded.target_time,
			stop_hit=excluded.stop_hit, stop_time=excluded.stop_time,
			result=excluded.result,
			minutes_to_target=excluded.minutes_to_target,
			minutes_to_stop=excluded.minutes_to_stop,
			origin=excluded.origin, updated_at=excluded.updated_at`,
		o.SignalID, o.Symbol, o.Date,
		boolToInt(o.EntryHit), unixOrNil(o.EntryTime),
		boolToInt(o.TargetHit), unixOrNil(o.TargetTime),
		boolToInt(o.StopHit), unixOrNil(o.StopTime),
		string(o.Result), intOrNil(o.MinutesToTarget), intOrNil(o.MinutesToStop),
		string(o.Origin), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert outcome %s: %w", o.SignalID, err)
	}
	return nil
}

func (r *SQLiteRecorder) Outcome(signalID string) (*model.BacktestOutcome, error) {
	row := r.db.QueryRow(`SELECT signal_id, symbol, date, entry_hit, entry_time,
		target_hit, target_time, stop_hit, stop_time, result,
		minutes_to_target, minutes_to_stop, origin
		FROM outcomes WHERE signal_id = ?`, signalID)
	return scanOutcome(row)
}

func (r *SQLiteRecorder) OutcomesForDate(date string) ([]model.BacktestOutcome, error) {
	rows, err := r.db.Query(`SELECT signal_id, symbol, date, entry_hit, entry_time,
		target_hit, target_time, stop_hit, stop_time, result,
		minutes_to_target, minutes_to_stop, origin
		FROM outcomes WHERE date = ? ORDER BY signal_id`, date)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outs []model.BacktestOutcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outs = append(outs, *o)
	}
	return outs, rows.Err()
}

// DeleteOutcomesBefore removes outcomes for dates strictly before the given
// date. YYYY-MM-DD strings compare lexicographically.
func (r *SQLiteRecorder) DeleteOutcomesBefore(date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM outcomes WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("delete outcomes before %s: %w", date, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *SQLiteRecorder) RecordRun(sum *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, date, total, rejected, primary_count, secondary_count,
		 synthetic_count, no_data_count, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		sum.RunID, sum.Date, sum.Total, sum.Rejected,
		sum.Primary, sum.Secondary, sum.Synthetic, sum.NoData,
		sum.StartedAt.Unix(), sum.FinishedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", sum.RunID, err)
	}
	return nil
}

func (r *SQLiteRecorder) LastRun() (*model.RunSummary, error) {
	row := r.db.QueryRow(`SELECT run_id, date, total, rejected, primary_count,
		secondary_count, synthetic_count, no_data_count, started_at, finished_at
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT 1`)

	var sum model.RunSummary
	var started, finished int64
	err := row.Scan(&sum.RunID, &sum.Date, &sum.Total, &sum.Rejected,
		&sum.Primary, &sum.Secondary, &sum.Synthetic, &sum.NoData, &started, &finished)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan last run: %w", err)
	}
	sum.StartedAt = time.Unix(started, 0)
	sum.FinishedAt = time.Unix(finished, 0)
	return &sum, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row rowScanner) (*model.BacktestOutcome, error) {
	var o model.BacktestOutcome
	var entryHit, targetHit, stopHit int
	var entryTime, targetTime, stopTime, minTarget, minStop sql.NullInt64
	var result, origin string

	err := row.Scan(&o.SignalID, &o.Symbol, &o.Date, &entryHit, &entryTime,
		&targetHit, &targetTime, &stopHit, &stopTime, &result,
		&minTarget, &minStop, &origin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan outcome: %w", err)
	}

	o.EntryHit = entryHit != 0
	o.TargetHit = targetHit != 0
	o.StopHit = stopHit != 0
	o.Result = model.Result(result)
	o.Origin = model.DataOrigin(origin)
	o.EntryTime = timeOrNil(entryTime)
	o.TargetTime = timeOrNil(targetTime)
	o.StopTime = timeOrNil(stopTime)
	if minTarget.Valid {
		v := int(minTarget.Int64)
		o.MinutesToTarget = &v
	}
	if minStop.Valid {
		v := int(minStop.Int64)
		o.MinutesToStop = &v
	}
	return &o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).In(model.ISTLocation())
	return &t
}
