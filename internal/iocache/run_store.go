package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

const (
	runsTable       = "slipcheck_runs"
	runResultsTable = "slipcheck_run_results"
)

// RunStoreImpl tracks completed engine runs and their per-record results.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore initializes and returns a new RunStore based on the backend type.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite run store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL run store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL run store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		return &RunStoreImpl{db: nil, backend: backend, connStr: connStr}, nil

	default:
		return nil, fmt.Errorf("unsupported run store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	store := &RunStoreImpl{db: db, backend: backend, connStr: connStr}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// createTables creates the runs and run_results tables if they do not exist.
func (rs *RunStoreImpl) createTables() error {
	for _, query := range getRunTableQueries(rs.backend) {
		if _, err := rs.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create run store tables: %w", err)
		}
	}
	return nil
}

// getRunTableQueries returns the CREATE TABLE statements for the backend.
func getRunTableQueries(backend schema.DatabaseBackend) []string {
	runs := quoteTableName(runsTable, backend)
	results := quoteTableName(runResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
					start_time VARCHAR(64) NOT NULL,
					end_time VARCHAR(64),
					engine_version VARCHAR(255) NOT NULL,
					config_params TEXT,
					total_records INT NOT NULL DEFAULT 0
				);
			`, runs),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					result_id BIGINT AUTO_INCREMENT PRIMARY KEY,
					run_id BIGINT NOT NULL,
					analysis_id VARCHAR(255) NOT NULL,
					cache_key VARCHAR(64) NOT NULL,
					method VARCHAR(32) NOT NULL,
					direction VARCHAR(16) NOT NULL,
					displacement_cm DOUBLE NOT NULL,
					kmax DOUBLE,
					vs_final_mps DOUBLE,
					damping_final DOUBLE,
					engine_version VARCHAR(255) NOT NULL,
					run_time VARCHAR(64) NOT NULL
				);
			`, results),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id BIGSERIAL PRIMARY KEY,
					start_time TEXT NOT NULL,
					end_time TEXT,
					engine_version TEXT NOT NULL,
					config_params TEXT,
					total_records INTEGER NOT NULL DEFAULT 0
				);
			`, runs),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					result_id BIGSERIAL PRIMARY KEY,
					run_id BIGINT NOT NULL,
					analysis_id TEXT NOT NULL,
					cache_key TEXT NOT NULL,
					method TEXT NOT NULL,
					direction TEXT NOT NULL,
					displacement_cm DOUBLE PRECISION NOT NULL,
					kmax DOUBLE PRECISION,
					vs_final_mps DOUBLE PRECISION,
					damping_final DOUBLE PRECISION,
					engine_version TEXT NOT NULL,
					run_time TEXT NOT NULL
				);
			`, results),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id INTEGER PRIMARY KEY AUTOINCREMENT,
					start_time TEXT NOT NULL,
					end_time TEXT,
					engine_version TEXT NOT NULL,
					config_params TEXT,
					total_records INTEGER NOT NULL DEFAULT 0
				);
			`, runs),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					result_id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id INTEGER NOT NULL,
					analysis_id TEXT NOT NULL,
					cache_key TEXT NOT NULL,
					method TEXT NOT NULL,
					direction TEXT NOT NULL,
					displacement_cm REAL NOT NULL,
					kmax REAL,
					vs_final_mps REAL,
					damping_final REAL,
					engine_version TEXT NOT NULL,
					run_time TEXT NOT NULL
				);
			`, results),
		}
	}
}

// formatTime serializes a time for storage. All backends store timestamps as
// RFC3339Nano text so rows round-trip identically across drivers.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the inverse of formatTime. NULL or empty text yields zero time.
func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BeginRun creates a new run row and returns its ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, engineVersion string, configParams map[string]any) (int64, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run config: %w", err)
	}

	runs := quoteTableName(runsTable, rs.backend)

	if rs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, engine_version, config_params) VALUES ($1, $2, $3) RETURNING run_id`, runs)
		var runID int64
		if err := rs.db.QueryRow(query, formatTime(startTime), engineVersion, string(paramsJSON)).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to begin run: %w", err)
		}
		return runID, nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (start_time, engine_version, config_params) VALUES (?, ?, ?)`, runs)
	res, err := rs.db.Exec(query, formatTime(startTime), engineVersion, string(paramsJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	return res.LastInsertId()
}

// EndRun marks a run as finished.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalRecords int) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	runs := quoteTableName(runsTable, rs.backend)

	var query string
	if rs.backend == schema.PostgreSQLBackend {
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, total_records = $2 WHERE run_id = $3`, runs)
	} else {
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, total_records = ? WHERE run_id = ?`, runs)
	}
	if _, err := rs.db.Exec(query, formatTime(endTime), totalRecords, runID); err != nil {
		return fmt.Errorf("failed to end run %d: %w", runID, err)
	}
	return nil
}

// RecordResult stores one completed record/polarity result row.
func (rs *RunStoreImpl) RecordResult(runID int64, rec schema.RunRecord) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	results := quoteTableName(runResultsTable, rs.backend)

	var query string
	if rs.backend == schema.PostgreSQLBackend {
		query = fmt.Sprintf(`INSERT INTO %s
			(run_id, analysis_id, cache_key, method, direction, displacement_cm, kmax, vs_final_mps, damping_final, engine_version, run_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, results)
	} else {
		query = fmt.Sprintf(`INSERT INTO %s
			(run_id, analysis_id, cache_key, method, direction, displacement_cm, kmax, vs_final_mps, damping_final, engine_version, run_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, results)
	}

	_, err := rs.db.Exec(query,
		runID, rec.AnalysisID, rec.CacheKey, string(rec.Method), string(rec.Direction),
		rec.DisplacementCm, rec.Kmax, rec.VsFinalMps, rec.DampingFinal,
		rec.EngineVersion, formatTime(rec.RunTime))
	if err != nil {
		return fmt.Errorf("failed to record result for %s: %w", rec.AnalysisID, err)
	}
	return nil
}

// latestRunID resolves the most recent run. Returns 0 when no runs exist.
func (rs *RunStoreImpl) latestRunID() (int64, error) {
	runs := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT COALESCE(MAX(run_id), 0) FROM %s`, runs)
	var runID int64
	if err := rs.db.QueryRow(query).Scan(&runID); err != nil {
		return 0, fmt.Errorf("failed to resolve latest run: %w", err)
	}
	return runID, nil
}

// ListResults returns stored results for a run. A runID of 0 selects the
// newest run.
func (rs *RunStoreImpl) ListResults(runID int64) ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	if runID == 0 {
		latest, err := rs.latestRunID()
		if err != nil {
			return nil, err
		}
		if latest == 0 {
			return nil, nil
		}
		runID = latest
	}

	results := quoteTableName(runResultsTable, rs.backend)
	placeholder := "?"
	if rs.backend == schema.PostgreSQLBackend {
		placeholder = "$1"
	}
	query := fmt.Sprintf(`SELECT run_id, analysis_id, cache_key, method, direction, displacement_cm, kmax, vs_final_mps, damping_final, engine_version, run_time
		FROM %s WHERE run_id = %s ORDER BY result_id`, results, placeholder)

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var rec schema.RunRecord
		var method, direction string
		var runTime sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.AnalysisID, &rec.CacheKey, &method, &direction,
			&rec.DisplacementCm, &rec.Kmax, &rec.VsFinalMps, &rec.DampingFinal,
			&rec.EngineVersion, &runTime); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		rec.Method = schema.Method(method)
		rec.Direction = schema.Direction(direction)
		rec.RunTime = parseTime(runTime)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: map[string]int64{},
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)
	results := quoteTableName(runResultsTable, rs.backend)

	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to count runs: %w", err)
	}

	row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", results))
	if err := row.Scan(&status.TotalRecords); err != nil {
		return status, fmt.Errorf("failed to count run results: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastID int64
		var lastStart, oldestStart sql.NullString
		row = rs.db.QueryRow(fmt.Sprintf("SELECT MAX(run_id), MAX(start_time), MIN(start_time) FROM %s", runs))
		if err := row.Scan(&lastID, &lastStart, &oldestStart); err != nil {
			return status, fmt.Errorf("failed to read run times: %w", err)
		}
		status.LastRunID = lastID
		status.LastRunTime = parseTime(lastStart)
		status.OldestRunTime = parseTime(oldestStart)
	}

	// Table sizes are backend-specific; use row-count estimates where exact
	// sizes are not cheap to compute.
	switch rs.backend {
	case schema.PostgreSQLBackend:
		for _, table := range []string{runsTable, runResultsTable} {
			var size int64
			row := rs.db.QueryRow("SELECT pg_total_relation_size($1)", table)
			if err := row.Scan(&size); err == nil {
				status.TableSizes[table] = size
			}
		}
	default:
		status.TableSizes[runsTable] = int64(status.TotalRuns) * 200
		status.TableSizes[runResultsTable] = int64(status.TotalRecords) * 200
	}

	return status, nil
}

// Close closes the underlying DB connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
