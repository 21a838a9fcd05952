package ingestion

import (
	"github.com/schollz/progressbar/v3"

	"github.com/rsignoret/road-accidents-db/internal/database"
	"github.com/rsignoret/road-accidents-db/internal/models"
)

// TableWriter bulk-loads a dataset into its target table as one unit of
// work, showing a per-row progress bar while the copy runs.
type TableWriter struct {
	dbManager database.DBManager
}

func NewTableWriter(dbManager database.DBManager) *TableWriter {
	return &TableWriter{dbManager: dbManager}
}

// Write copies every row of the dataset inside a single transaction. The
// progress bar is observability only; the commit either covers the whole
// file or nothing.
func (w *TableWriter) Write(ds models.Dataset) (int64, error) {
	bar := progressbar.Default(int64(ds.Len()), ds.TableName())
	defer bar.Finish()

	return w.dbManager.CopyDataset(ds, func() {
		bar.Add(1)
	})
}
