// Package store persists batch reports in SQLite so runs can be compared
// and queried after the fact.
//
// Every run is keyed by its UUID. A report is written in a single
// transaction: the run row, per-train verdicts, section occupancy, station
// presence and the accident ledger.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cxd309/tms-timetable/internal/accident"
	"github.com/cxd309/tms-timetable/internal/engine"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarises one saved report.
type Run struct {
	ID        string
	CreatedAt time.Time
	Trains    int
	Accidents int
	// FirstAccident is the time of the earliest conflict, nil for a clean run.
	FirstAccident *float64
}

// Occupancy is one saved section interval.
type Occupancy struct {
	Section   string
	TrainID   string
	Left      string
	Right     string
	Departure float64
	Arrival   float64
}

// Store manages SQLite persistence with WAL mode.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		trains     INTEGER NOT NULL,
		accidents  INTEGER NOT NULL,
		first_time REAL
	);

	CREATE TABLE IF NOT EXISTS train_results (
		run_id         TEXT NOT NULL REFERENCES runs(id),
		seq            INTEGER NOT NULL,
		train_number   TEXT NOT NULL,
		verdict        TEXT NOT NULL,
		hops_committed INTEGER NOT NULL,
		reason         TEXT,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS intervals (
		run_id        TEXT NOT NULL REFERENCES runs(id),
		section       TEXT NOT NULL,
		seq           INTEGER NOT NULL,
		train_number  TEXT NOT NULL,
		left_station  TEXT NOT NULL,
		right_station TEXT NOT NULL,
		departure     REAL NOT NULL,
		arrival       REAL NOT NULL,
		PRIMARY KEY (run_id, section, seq)
	);

	CREATE TABLE IF NOT EXISTS presences (
		run_id       TEXT NOT NULL REFERENCES runs(id),
		station      TEXT NOT NULL,
		time         REAL NOT NULL,
		train_number TEXT NOT NULL,
		PRIMARY KEY (run_id, station, time, train_number)
	);

	CREATE TABLE IF NOT EXISTS accidents (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id   TEXT NOT NULL REFERENCES runs(id),
		kind     TEXT NOT NULL,
		location TEXT NOT NULL,
		time     REAL NOT NULL,
		along    REAL NOT NULL DEFAULT 0,
		message  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accidents_run_time ON accidents(run_id, time);

	CREATE TABLE IF NOT EXISTS accident_trains (
		accident_id  INTEGER NOT NULL REFERENCES accidents(id),
		train_number TEXT NOT NULL,
		PRIMARY KEY (accident_id, train_number)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

// SaveReport writes r under r.RunID. Saving the same run twice fails.
func (s *Store) SaveReport(r engine.Report) error {
	if r.RunID == "" {
		return errors.New("save report: empty run id")
	}
	return retryOnContention(func() error { return s.saveReport(r) })
}

func (s *Store) saveReport(r engine.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var first sql.NullFloat64
	n := 0
	for _, e := range r.Accidents {
		n += len(e.Records)
	}
	if r.FirstAccident != nil {
		first = sql.NullFloat64{Float64: r.FirstAccident.Time, Valid: true}
	}
	if _, err := tx.Exec(
		`INSERT INTO runs (id, created_at, trains, accidents, first_time) VALUES (?, ?, ?, ?, ?)`,
		r.RunID, time.Now().UTC().Format(timeLayout), len(r.Trains), n, first,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range r.Trains {
		if _, err := tx.Exec(
			`INSERT INTO train_results (run_id, seq, train_number, verdict, hops_committed, reason)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.RunID, i, res.TrainID, string(res.Verdict), res.HopsCommitted, res.Reason,
		); err != nil {
			return fmt.Errorf("insert train result %q: %w", res.TrainID, err)
		}
	}

	for _, sec := range r.Sections {
		for i, iv := range sec.Schedule {
			if _, err := tx.Exec(
				`INSERT INTO intervals (run_id, section, seq, train_number, left_station, right_station, departure, arrival)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.RunID, sec.Name, i, iv.Train.ID, iv.Left, iv.Right, iv.Departure, iv.Arrival,
			); err != nil {
				return fmt.Errorf("insert interval %s/%d: %w", sec.Name, i, err)
			}
		}
	}

	for _, st := range r.Stations {
		for _, p := range st.Presence {
			for _, id := range p.Trains {
				if _, err := tx.Exec(
					`INSERT INTO presences (run_id, station, time, train_number) VALUES (?, ?, ?, ?)`,
					r.RunID, st.Name, p.Time, id,
				); err != nil {
					return fmt.Errorf("insert presence %s@%g: %w", st.Name, p.Time, err)
				}
			}
		}
	}

	for _, e := range r.Accidents {
		for _, rec := range e.Records {
			res, err := tx.Exec(
				`INSERT INTO accidents (run_id, kind, location, time, along, message) VALUES (?, ?, ?, ?, ?, ?)`,
				r.RunID, string(rec.Kind), rec.Location, rec.Time, rec.Offset, rec.Message,
			)
			if err != nil {
				return fmt.Errorf("insert accident: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("accident id: %w", err)
			}
			for _, tr := range rec.Trains {
				if _, err := tx.Exec(
					`INSERT INTO accident_trains (accident_id, train_number) VALUES (?, ?)`, id, tr,
				); err != nil {
					return fmt.Errorf("insert accident train: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// GetRun retrieves a run summary by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, trains, accidents, first_time FROM runs WHERE id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ListRuns returns every saved run, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, trains, accidents, first_time FROM runs ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var created string
	var first sql.NullFloat64
	if err := row.Scan(&r.ID, &created, &r.Trains, &r.Accidents, &first); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for run %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	if first.Valid {
		r.FirstAccident = &first.Float64
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Accidents
// ---------------------------------------------------------------------------

// ListAccidents returns the run's accident records ordered by time, then by
// the order they were raised in.
func (s *Store) ListAccidents(runID string) ([]accident.Record, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, location, time, along, message FROM accidents
		 WHERE run_id = ? ORDER BY time, id`, runID,
	)
	if err != nil {
		return nil, err
	}
	var recs []accident.Record
	var ids []int64
	for rows.Next() {
		var id int64
		var rec accident.Record
		var kind string
		if err := rows.Scan(&id, &kind, &rec.Location, &rec.Time, &rec.Offset, &rec.Message); err != nil {
			rows.Close()
			return nil, err
		}
		rec.Kind = accident.Kind(kind)
		recs = append(recs, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		trains, err := s.accidentTrains(id)
		if err != nil {
			return nil, err
		}
		recs[i].Trains = trains
	}
	return recs, nil
}

func (s *Store) accidentTrains(id int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT train_number FROM accident_trains WHERE accident_id = ? ORDER BY train_number`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trains []string
	for rows.Next() {
		var tr string
		if err := rows.Scan(&tr); err != nil {
			return nil, err
		}
		trains = append(trains, tr)
	}
	return trains, rows.Err()
}

// FirstAccident returns every record at the run's earliest conflict time, or
// nil when the run had none.
func (s *Store) FirstAccident(runID string) (*accident.Entry, error) {
	recs, err := s.ListAccidents(runID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	e := accident.Entry{Time: recs[0].Time}
	for _, r := range recs {
		if r.Time != e.Time {
			break
		}
		e.Records = append(e.Records, r)
	}
	return &e, nil
}

// ---------------------------------------------------------------------------
// Timetable
// ---------------------------------------------------------------------------

// ListOccupancy returns the intervals saved for one section of a run, in the
// order they were recorded. section is the key's string form, e.g. "de".
func (s *Store) ListOccupancy(runID, section string) ([]Occupancy, error) {
	rows, err := s.db.Query(
		`SELECT section, train_number, left_station, right_station, departure, arrival
		 FROM intervals WHERE run_id = ? AND section = ? ORDER BY seq`, runID, section,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Occupancy
	for rows.Next() {
		var o Occupancy
		if err := rows.Scan(&o.Section, &o.TrainID, &o.Left, &o.Right, &o.Departure, &o.Arrival); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListPresence returns the trains seen at station in a run, keyed by time.
func (s *Store) ListPresence(runID, station string) (map[float64][]string, error) {
	rows, err := s.db.Query(
		`SELECT time, train_number FROM presences
		 WHERE run_id = ? AND station = ? ORDER BY time, train_number`, runID, station,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[float64][]string)
	for rows.Next() {
		var t float64
		var tr string
		if err := rows.Scan(&t, &tr); err != nil {
			return nil, err
		}
		out[t] = append(out[t], tr)
	}
	return out, rows.Err()
}
