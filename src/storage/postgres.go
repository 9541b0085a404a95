package storage

import (
	"database/sql"
	"fmt"
	"time"

	"sales-dashboard/src/config"
	"sales-dashboard/src/helpers"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresJournal appends applied snapshots to a table in the schema named
// after the application.
type PostgresJournal struct {
	Config *config.Config
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresJournal(cfg *config.Config, log *logger.Logger) *PostgresJournal {
	return &PostgresJournal{
		Config: cfg,
		Schema: cfg.Name,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewDatabaseError(err, "open postgres")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError(err, "ping postgres")
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError(err, "create schema %s", d.Schema)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."snapshots" (
			id BIGSERIAL PRIMARY KEY,
			received_at BIGINT NOT NULL,
			origin TEXT NOT NULL,
			total_sales DOUBLE PRECISION,
			last_timestamp TEXT,
			rows BIGINT,
			payload JSONB NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError(err, "create snapshots")
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) SaveSnapshot(snap *models.MAcceptedSnapshot) error {
	if snap == nil || snap.Snapshot == nil {
		return nil
	}

	row := toJournalRow(snap)
	query := fmt.Sprintf(`
		INSERT INTO "%s"."snapshots" (received_at, origin, total_sales, last_timestamp, rows, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Schema)
	if _, err := d.DB.Exec(query, row.receivedAt, row.origin, row.totalSales, row.lastTimestamp, row.rows, row.payload); err != nil {
		return helpers.NewDatabaseError(err, "insert snapshot")
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) CountSnapshots() (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM "%s"."snapshots"`, d.Schema)
	if err := d.DB.QueryRow(query).Scan(&n); err != nil {
		return 0, helpers.NewDatabaseError(err, "count snapshots")
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	query := fmt.Sprintf(`DELETE FROM "%s"."snapshots" WHERE received_at < $1`, d.Schema)
	res, err := d.DB.Exec(query, cutoff)
	if err != nil {
		return helpers.NewDatabaseError(err, "cleanup snapshots")
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup removed %d snapshots older than %d days", n, retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
