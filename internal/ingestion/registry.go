package ingestion

import (
	"fmt"
	"log"

	"github.com/rsignoret/road-accidents-db/internal/database"
	"github.com/rsignoret/road-accidents-db/internal/models"
)

// Registry reconciles discovered files against the persisted ledger.
type Registry struct {
	dbManager database.DBManager
}

func NewRegistry(dbManager database.DBManager) *Registry {
	return &Registry{dbManager: dbManager}
}

// Reconcile looks up every discovered file by content checksum. Content
// already marked processed is skipped without a new ledger row, even if
// it reappeared under a different name or path; everything else gets a
// fresh pending row. Staged rows are inserted in one transaction,
// committed once, so running Reconcile twice on unchanged input is a
// no-op the second time.
func (r *Registry) Reconcile(files models.FileMap) error {
	var staged []*models.FileRecord

	for _, fileType := range models.AllFileTypes {
		file := files[fileType]
		if file == nil {
			continue
		}

		log.Printf("Checking if file `%s` has already been processed using its checksum `%s`",
			file.FileName, file.Checksum)

		existing, err := r.dbManager.FindFileRecordsByChecksum(file.Checksum)
		if err != nil {
			return fmt.Errorf("failed to reconcile %s against the ledger: %w", file.FileName, err)
		}

		if rec := firstProcessed(existing); rec != nil {
			log.Printf("File `%s/%s` has already been processed. Skipping...", file.DirName, file.FileName)
			file.Record = rec
			continue
		}

		log.Printf("Registering file `%s` in the ledger.", file.FileName)
		file.Record = &models.FileRecord{
			FileType: fileType,
			DirName:  file.DirName,
			FileName: file.FileName,
			Checksum: file.Checksum,
			Status:   models.StatusPending,
		}
		staged = append(staged, file.Record)
	}

	if err := r.dbManager.InsertFileRecords(staged); err != nil {
		return fmt.Errorf("failed to register discovered files: %w", err)
	}

	return nil
}

func firstProcessed(records []models.FileRecord) *models.FileRecord {
	for i := range records {
		if records[i].Status == models.StatusProcessed {
			return &records[i]
		}
	}
	return nil
}
