package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for generation history.
const (
	generationsTable   = "benchtable_generations"
	runSetCountsTable  = "benchtable_runset_counts"
	sqliteTimeLayout   = "2006-01-02T15:04:05.000000000Z07:00"
	statusTimeLayout   = "2006-01-02 15:04:05"
	generationColumns  = "generation_id, start_time, duration_ms, output_name, runset_count, row_count, diff_row_count, regressions, config_params"
	runSetCountColumns = "generation_id, runset_index, runset_name, tool, correct_count, wrong_count, other_count, score"
)

// HistoryStoreImpl records table generations in a SQL database.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled history
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// openDatabase opens the database of a backend without connecting to it.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetHistoryDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", withParseTime(connStr))
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// withParseTime makes the MySQL driver scan DATETIME columns into time.Time.
func withParseTime(connStr string) string {
	if strings.Contains(connStr, "parseTime=") {
		return connStr
	}
	if strings.Contains(connStr, "?") {
		return connStr + "&parseTime=true"
	}
	return connStr + "?parseTime=true"
}

// createHistoryTables creates the generation history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{generationsTable, getCreateGenerationsQuery(backend)},
		{runSetCountsTable, getCreateRunSetCountsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateGenerationsQuery returns the CREATE TABLE query for benchtable_generations.
func getCreateGenerationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(generationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id VARCHAR(36) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				duration_ms BIGINT NOT NULL,
				output_name VARCHAR(512) NOT NULL,
				runset_count INT NOT NULL,
				row_count INT NOT NULL,
				diff_row_count INT NOT NULL,
				regressions INT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id TEXT PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				duration_ms BIGINT NOT NULL,
				output_name TEXT NOT NULL,
				runset_count INT NOT NULL,
				row_count INT NOT NULL,
				diff_row_count INT NOT NULL,
				regressions INT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				output_name TEXT NOT NULL,
				runset_count INTEGER NOT NULL,
				row_count INTEGER NOT NULL,
				diff_row_count INTEGER NOT NULL,
				regressions INTEGER NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunSetCountsQuery returns the CREATE TABLE query for benchtable_runset_counts.
func getCreateRunSetCountsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runSetCountsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id VARCHAR(36) NOT NULL,
				runset_index INT NOT NULL,
				runset_name VARCHAR(512) NOT NULL,
				tool VARCHAR(255) NOT NULL,
				correct_count INT NOT NULL,
				wrong_count INT NOT NULL,
				other_count INT NOT NULL,
				score BIGINT NOT NULL,
				PRIMARY KEY (generation_id, runset_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id TEXT NOT NULL,
				runset_index INT NOT NULL,
				runset_name TEXT NOT NULL,
				tool TEXT NOT NULL,
				correct_count INT NOT NULL,
				wrong_count INT NOT NULL,
				other_count INT NOT NULL,
				score BIGINT NOT NULL,
				PRIMARY KEY (generation_id, runset_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				generation_id TEXT NOT NULL,
				runset_index INTEGER NOT NULL,
				runset_name TEXT NOT NULL,
				tool TEXT NOT NULL,
				correct_count INTEGER NOT NULL,
				wrong_count INTEGER NOT NULL,
				other_count INTEGER NOT NULL,
				score INTEGER NOT NULL,
				PRIMARY KEY (generation_id, runset_index)
			);
		`, quotedTableName)
	}
}

// RecordGeneration stores one generation and its per-run-set counts in a single transaction.
func (hs *HistoryStoreImpl) RecordGeneration(generation schema.GenerationRecord, runSets []schema.RunSetCountsRecord) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	generationQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(generationsTable, hs.backend), generationColumns, placeholders(hs.backend, 9))
	_, err = tx.Exec(generationQuery,
		generation.GenerationID, formatTime(generation.StartTime, hs.backend), generation.DurationMs,
		generation.OutputName, generation.RunSets, generation.Rows, generation.DiffRows,
		generation.Regressions, generation.ConfigParams)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	runSetQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(runSetCountsTable, hs.backend), runSetCountColumns, placeholders(hs.backend, 8))
	for _, rs := range runSets {
		_, err = tx.Exec(runSetQuery,
			generation.GenerationID, rs.RunSetIndex, rs.RunSetName, rs.Tool,
			rs.Correct, rs.Wrong, rs.Other, rs.Score)
		if err != nil {
			return fmt.Errorf("failed to insert counts of run-set %q: %w", rs.RunSetName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit generation: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedGenerations := quoteTableName(generationsTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedGenerations))
	if err := row.Scan(&status.TotalGenerations); err != nil {
		return status, fmt.Errorf("failed to get total generations: %w", err)
	}

	if status.TotalGenerations > 0 {
		lastQuery := fmt.Sprintf("SELECT generation_id, start_time FROM %s ORDER BY start_time DESC, generation_id DESC LIMIT 1", quotedGenerations)
		var lastTime any
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastGenerationID, &lastTime); err != nil {
			return status, fmt.Errorf("failed to get last generation info: %w", err)
		}
		t, err := parseTime(lastTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse last generation time: %w", err)
		}
		status.LastGenerationTime = t

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC, generation_id ASC LIMIT 1", quotedGenerations)
		var oldestTime any
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldestTime); err != nil {
			return status, fmt.Errorf("failed to get oldest generation time: %w", err)
		}
		t, err = parseTime(oldestTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest generation time: %w", err)
		}
		status.OldestGenerationTime = t

		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(row_count), 0) FROM %s", quotedGenerations)
		if err := hs.db.QueryRow(rowsQuery).Scan(&status.TotalRowsTabulated); err != nil {
			return status, fmt.Errorf("failed to get total rows tabulated: %w", err)
		}
	}

	for _, table := range []string{generationsTable, runSetCountsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllGenerations retrieves all generations, oldest first.
func (hs *HistoryStoreImpl) GetAllGenerations() ([]schema.GenerationRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY start_time, generation_id",
		generationColumns, quoteTableName(generationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.GenerationRecord
	for rows.Next() {
		var record schema.GenerationRecord
		var startTime any
		if err := rows.Scan(&record.GenerationID, &startTime, &record.DurationMs, &record.OutputName,
			&record.RunSets, &record.Rows, &record.DiffRows, &record.Regressions, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		t, err := parseTime(startTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		record.StartTime = t
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}
	return results, nil
}

// GetAllRunSetCounts retrieves all per-run-set counts.
func (hs *HistoryStoreImpl) GetAllRunSetCounts() ([]schema.RunSetCountsRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY generation_id, runset_index",
		runSetCountColumns, quoteTableName(runSetCountsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run-set counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunSetCountsRecord
	for rows.Next() {
		var record schema.RunSetCountsRecord
		if err := rows.Scan(&record.GenerationID, &record.RunSetIndex, &record.RunSetName, &record.Tool,
			&record.Correct, &record.Wrong, &record.Other, &record.Score); err != nil {
			return nil, fmt.Errorf("failed to scan run-set counts: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run-set counts: %w", err)
	}
	return results, nil
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("\"%s\"", name)
}

// placeholders returns n bind parameters in the syntax of the backend.
func placeholders(backend schema.DatabaseBackend, n int) string {
	params := make([]string, n)
	for i := range params {
		if backend == schema.PostgreSQLBackend {
			params[i] = fmt.Sprintf("$%d", i+1)
		} else {
			params[i] = "?"
		}
	}
	return strings.Join(params, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// parseTime reads a time column, stored as text by SQLite and natively elsewhere.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}
