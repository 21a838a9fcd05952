package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsignoret/road-accidents-db/internal/models"
	"github.com/rsignoret/road-accidents-db/internal/retry"
)

// Connect opens a pool against the store and blocks until the store
// accepts connections, pinging through the retry executor. Transient
// errors (store still starting up) are retried at the executor's fixed
// interval; anything else is returned immediately.
func Connect(ctx context.Context, connStr string, executor *retry.Executor) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	err = executor.
		WithOnRetry(func(attempt int, err error) {
			log.Printf("Database not ready (attempt %d): %v. Retrying...", attempt, err)
		}).
		Execute(ctx, dbpool.Ping)
	if err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Println("Connected to database.")
	return dbpool, nil
}

// DBManager is the store interface used by the ingestion packages.
type DBManager interface {
	InitSchema() error
	FindFileRecordsByChecksum(checksum string) ([]models.FileRecord, error)
	InsertFileRecords(records []*models.FileRecord) error
	UpdateFileStatus(id int, status models.ProcessingStatus, reason string) error
	CopyDataset(ds models.Dataset, onRow func()) (int64, error)
}

type PostgresDBManager struct {
	dbpool  *pgxpool.Pool
	ctx     context.Context
	retries *retry.Executor
}

func NewPostgresDBManager(ctx context.Context, pool *pgxpool.Pool, executor *retry.Executor) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool, ctx: ctx, retries: executor}
}

// FindFileRecordsByChecksum returns every ledger row sharing the given
// content checksum, oldest first.
func (m *PostgresDBManager) FindFileRecordsByChecksum(checksum string) ([]models.FileRecord, error) {
	query := `
	SELECT id, file_type, dir_name, file_name, checksum, processing_status, COALESCE(reason, ''), registered_at
	FROM raw_accident_files
	WHERE checksum = $1
	ORDER BY id;`

	rows, err := m.dbpool.Query(m.ctx, query, checksum)
	if err != nil {
		return nil, fmt.Errorf("error querying file records by checksum: %w", err)
	}
	defer rows.Close()

	var records []models.FileRecord
	for rows.Next() {
		var rec models.FileRecord
		if err := rows.Scan(&rec.ID, &rec.FileType, &rec.DirName, &rec.FileName,
			&rec.Checksum, &rec.Status, &rec.Reason, &rec.RegisteredAt); err != nil {
			return nil, fmt.Errorf("error scanning file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over file records: %w", err)
	}

	return records, nil
}

// InsertFileRecords inserts the staged ledger rows in a single
// transaction, committed once, and fills in the assigned ids.
func (m *PostgresDBManager) InsertFileRecords(records []*models.FileRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := m.dbpool.Begin(m.ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(m.ctx)

	query := `
	INSERT INTO raw_accident_files (file_type, dir_name, file_name, checksum, processing_status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, registered_at;`

	for _, rec := range records {
		err := tx.QueryRow(m.ctx, query,
			rec.FileType, rec.DirName, rec.FileName, rec.Checksum, rec.Status,
		).Scan(&rec.ID, &rec.RegisteredAt)
		if err != nil {
			return fmt.Errorf("error inserting file record for %s: %w", rec.FileName, err)
		}
	}

	if err := tx.Commit(m.ctx); err != nil {
		return fmt.Errorf("error committing file records: %w", err)
	}

	return nil
}

// UpdateFileStatus sets the status (and optional failure reason) of one
// ledger row, committed on its own so a later failure cannot roll it back.
func (m *PostgresDBManager) UpdateFileStatus(id int, status models.ProcessingStatus, reason string) error {
	query := `
	UPDATE raw_accident_files
	SET processing_status = $1,
		reason = $2
	WHERE id = $3;`

	var reasonValue any
	if reason != "" {
		reasonValue = reason
	}

	_, err := m.dbpool.Exec(m.ctx, query, status, reasonValue, id)
	if err != nil {
		return fmt.Errorf("error updating file status: %w", err)
	}

	return nil
}

// CopyDataset bulk-loads every row of the dataset into its target table
// inside one transaction. onRow, if set, is called once per copied row.
// Any conversion or constraint error aborts the whole file's commit.
func (m *PostgresDBManager) CopyDataset(ds models.Dataset, onRow func()) (int64, error) {
	tx, err := m.dbpool.Begin(m.ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(m.ctx)

	copySource := pgx.CopyFromSlice(ds.Len(), func(i int) ([]any, error) {
		if onRow != nil {
			onRow()
		}
		return ds.Row(i), nil
	})

	copied, err := tx.CopyFrom(m.ctx, pgx.Identifier{ds.TableName()}, ds.Columns(), copySource)
	if err != nil {
		return 0, fmt.Errorf("unable to copy rows into table %s: %w", ds.TableName(), err)
	}

	if err := tx.Commit(m.ctx); err != nil {
		return 0, fmt.Errorf("error committing rows into table %s: %w", ds.TableName(), err)
	}

	return copied, nil
}
