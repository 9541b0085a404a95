package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"sales-dashboard/src/config"
	"sales-dashboard/src/helpers"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteJournal appends applied snapshots to a local SQLite file.
type SQLiteJournal struct {
	Config *config.Config
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteJournal(cfg *config.Config, log *logger.Logger) *SQLiteJournal {
	return &SQLiteJournal{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return helpers.NewDatabaseError(err, "create directory %s", dir)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError(err, "open %s", dsn)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError(err, "ping %s", dsn)
	}

	// Writes come from several goroutines; one connection serializes them
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			received_at INTEGER NOT NULL,
			origin TEXT NOT NULL,
			total_sales REAL,
			last_timestamp TEXT,
			rows INTEGER,
			payload TEXT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError(err, "create snapshots")
	}

	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_snapshots_received ON snapshots (received_at)"); err != nil {
		return helpers.NewDatabaseError(err, "create snapshots index")
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) SaveSnapshot(snap *models.MAcceptedSnapshot) error {
	if snap == nil || snap.Snapshot == nil {
		return nil
	}

	row := toJournalRow(snap)
	_, err := d.DB.Exec(`
		INSERT INTO snapshots (received_at, origin, total_sales, last_timestamp, rows, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.receivedAt, row.origin, row.totalSales, row.lastTimestamp, row.rows, row.payload)
	if err != nil {
		return helpers.NewDatabaseError(err, "insert snapshot")
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) CountSnapshots() (int, error) {
	var n int
	if err := d.DB.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		return 0, helpers.NewDatabaseError(err, "count snapshots")
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	res, err := d.DB.Exec("DELETE FROM snapshots WHERE received_at < ?", cutoff)
	if err != nil {
		return helpers.NewDatabaseError(err, "cleanup snapshots")
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup removed %d snapshots older than %d days", n, retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Row mapping shared by both journals
// -----------------------------------------------------------------------------

type journalRow struct {
	receivedAt    int64
	origin        string
	totalSales    sql.NullFloat64
	lastTimestamp sql.NullString
	rows          sql.NullInt64
	payload       string
}

func toJournalRow(snap *models.MAcceptedSnapshot) journalRow {
	s := snap.Snapshot
	row := journalRow{
		receivedAt: snap.ReceivedAt.UnixMilli(),
		origin:     snap.Origin,
		payload:    string(snap.Payload),
	}
	if s.TotalSales != nil {
		row.totalSales = sql.NullFloat64{Float64: *s.TotalSales, Valid: true}
	}
	if s.LastTimestamp != nil {
		row.lastTimestamp = sql.NullString{String: *s.LastTimestamp, Valid: true}
	}
	if s.Rows != nil {
		row.rows = sql.NullInt64{Int64: *s.Rows, Valid: true}
	}
	if row.payload == "" {
		row.payload = "{}"
	}
	return row
}
