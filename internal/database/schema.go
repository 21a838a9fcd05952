package database

import (
	"context"
	"fmt"
	"log"
)

// createTableStatements is the relational contract: the ledger plus the
// four entity tables. Loads rely on CREATE TABLE IF NOT EXISTS being
// idempotent, so InitSchema can run on every start.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS raw_accident_files (
		id SERIAL PRIMARY KEY,
		file_type VARCHAR(32) NOT NULL,
		dir_name TEXT NOT NULL,
		file_name TEXT NOT NULL,
		checksum VARCHAR(64) NOT NULL,
		processing_status VARCHAR(16) NOT NULL
			CHECK (processing_status IN ('pending', 'processed', 'failed')),
		reason TEXT,
		registered_at TIMESTAMP NOT NULL DEFAULT now()
	);`,

	`CREATE INDEX IF NOT EXISTS idx_raw_accident_files_checksum
		ON raw_accident_files (checksum);`,

	`CREATE TABLE IF NOT EXISTS characteristics (
		num_acc BIGINT NOT NULL,
		jour INTEGER NOT NULL,
		mois INTEGER NOT NULL,
		an INTEGER NOT NULL,
		hrmn VARCHAR(8) NOT NULL,
		lum INTEGER NOT NULL,
		dep VARCHAR(8) NOT NULL,
		com VARCHAR(8) NOT NULL,
		agglomeration INTEGER NOT NULL,
		intersec INTEGER NOT NULL,
		atm INTEGER NOT NULL,
		col INTEGER NOT NULL,
		adr TEXT,
		lat DOUBLE PRECISION,
		long DOUBLE PRECISION
	);`,

	`CREATE TABLE IF NOT EXISTS locations (
		num_acc BIGINT NOT NULL,
		catr INTEGER NOT NULL,
		voie VARCHAR(16),
		circ INTEGER NOT NULL,
		nbv INTEGER NOT NULL,
		vosp INTEGER NOT NULL,
		prof INTEGER NOT NULL,
		plan INTEGER NOT NULL,
		surf INTEGER NOT NULL,
		infra INTEGER NOT NULL,
		situ INTEGER NOT NULL,
		vma INTEGER NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		num_acc BIGINT NOT NULL,
		id_vehicule VARCHAR(16) NOT NULL,
		num_veh VARCHAR(8) NOT NULL,
		senc INTEGER NOT NULL,
		catv INTEGER NOT NULL,
		obs INTEGER NOT NULL,
		obsm INTEGER NOT NULL,
		choc INTEGER NOT NULL,
		manv INTEGER NOT NULL,
		motor INTEGER NOT NULL,
		occutc INTEGER NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS users (
		num_acc BIGINT NOT NULL,
		id_vehicule VARCHAR(16) NOT NULL,
		num_veh VARCHAR(8) NOT NULL,
		place INTEGER NOT NULL,
		catu INTEGER NOT NULL,
		grav INTEGER NOT NULL,
		sexe INTEGER NOT NULL,
		an_nais INTEGER NOT NULL,
		trajet INTEGER NOT NULL,
		locp INTEGER NOT NULL,
		actp VARCHAR(4) NOT NULL,
		etatp INTEGER NOT NULL
	);`,
}

// InitSchema creates all required tables, retrying with the same fixed
// interval as Connect while the store reports a transient condition. Any
// other error (bad credentials, conflicting schema) propagates at once.
func (m *PostgresDBManager) InitSchema() error {
	err := m.retries.
		WithOnRetry(func(attempt int, err error) {
			log.Printf("Failed to create tables (attempt %d): %v. Attempting again...", attempt, err)
		}).
		Execute(m.ctx, func(ctx context.Context) error {
			log.Println("Trying to create the database tables...")
			for _, query := range createTableStatements {
				if _, err := m.dbpool.Exec(ctx, query); err != nil {
					return fmt.Errorf("error creating schema: %w", err)
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	log.Println("Tables created.")
	return nil
}
