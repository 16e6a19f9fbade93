package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/votesim/internal/constants"
	"github.com/nvandessel/votesim/internal/simulation"
)

// SQLiteResultStore implements ResultStore on a SQLite database file.
type SQLiteResultStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewSQLiteResultStore opens (creating if needed) dir/results.db.
func NewSQLiteResultStore(dir string) (*SQLiteResultStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, constants.ResultsDB)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteResultStore{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteResultStore) Path() string {
	return s.dbPath
}

// SaveExperiment stores the run header, every round and the project
// averages in one transaction.
func (s *SQLiteResultStore) SaveExperiment(ctx context.Context, cfgYAML []byte, result simulation.ExperimentResult) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	mean, err := json.Marshal(result.Mean)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sc := result.Scenario
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, name, design, scoring_method, seed, runs, mean_summary, config_yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		s.now().UTC().Format(timeFormat),
		sc.Name,
		string(sc.Design),
		sc.Funding.Method.String(),
		int64(sc.Seed),
		len(result.Rounds),
		string(mean),
		string(cfgYAML),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for i, rr := range result.Rounds {
		summary, err := json.Marshal(rr.Summary)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode round %d summary: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rounds (run_id, round_index, seed, votes_cast, duration_ns, summary)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), i, int64(rr.Seed), rr.VotesCast, int64(rr.Duration), string(summary),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert round %d: %w", i, err)
		}
	}

	for _, p := range result.Projects {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO project_results (run_id, project_id, owner_id, true_impact, mean_votes, mean_score, mean_token_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id.String(), p.ProjectID, p.OwnerID, p.TrueImpact, p.MeanVotes, p.MeanScore, p.MeanTokenAmount,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert project %s: %w", p.ProjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// timeFormat is fixed width so created_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, created_at, name, design, scoring_method, seed, runs, mean_summary`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, extra ...any) (Run, error) {
	var (
		r                         Run
		id, createdAt, name, mean string
		seed                      int64
	)
	dest := append([]any{&id, &createdAt, &name, &r.Design, &r.ScoringMethod, &seed, &r.Runs, &mean}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Run{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("stored run id %q: %w", id, err)
	}
	r.ID = parsed
	r.Name = name
	r.Seed = uint64(seed)
	if r.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return Run{}, fmt.Errorf("run %s created_at: %w", id, err)
	}
	if err := json.Unmarshal([]byte(mean), &r.Mean); err != nil {
		return Run{}, fmt.Errorf("run %s summary: %w", id, err)
	}
	return r, nil
}

// ListRuns returns every stored run, newest first.
func (s *SQLiteResultStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its rounds and project averages.
func (s *SQLiteResultStore) GetRun(ctx context.Context, id uuid.UUID) (*RunDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cfg sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+`, config_yaml FROM runs WHERE id = ?`, id.String())
	run, err := scanRun(row, &cfg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	detail := &RunDetail{Run: run, ConfigYAML: cfg.String}
	if detail.Rounds, err = s.loadRounds(ctx, id); err != nil {
		return nil, err
	}
	if detail.Projects, err = s.loadProjects(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

// ResolveID expands a full ID or unique ID prefix to a stored run ID.
func (s *SQLiteResultStore) ResolveID(ctx context.Context, prefix string) (uuid.UUID, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return uuid.Parse(matches[0])
	default:
		return uuid.Nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
	}
}

func (s *SQLiteResultStore) loadRounds(ctx context.Context, id uuid.UUID) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round_index, seed, votes_cast, duration_ns, summary
		FROM rounds WHERE run_id = ? ORDER BY round_index`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var (
			r        Round
			seed     int64
			duration int64
			summary  string
		)
		if err := rows.Scan(&r.Index, &seed, &r.VotesCast, &duration, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		r.Seed = uint64(seed)
		r.Duration = time.Duration(duration)
		if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
			return nil, fmt.Errorf("round %d summary: %w", r.Index, err)
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func (s *SQLiteResultStore) loadProjects(ctx context.Context, id uuid.UUID) ([]simulation.ProjectAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, owner_id, true_impact, mean_votes, mean_score, mean_token_amount
		FROM project_results WHERE run_id = ? ORDER BY rowid`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query project results: %w", err)
	}
	defer rows.Close()

	var projects []simulation.ProjectAverage
	for rows.Next() {
		var (
			p     simulation.ProjectAverage
			owner sql.NullString
		)
		if err := rows.Scan(&p.ProjectID, &owner, &p.TrueImpact, &p.MeanVotes, &p.MeanScore, &p.MeanTokenAmount); err != nil {
			return nil, fmt.Errorf("failed to scan project result: %w", err)
		}
		p.OwnerID = owner.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Close closes the database.
func (s *SQLiteResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

var _ ResultStore = (*SQLiteResultStore)(nil)
