package ingestion

import (
	"log"

	"github.com/rsignoret/road-accidents-db/internal/database"
	"github.com/rsignoret/road-accidents-db/internal/models"
	"github.com/rsignoret/road-accidents-db/internal/parser"
)

// TableBinding pairs a logical file type with its target table.
type TableBinding struct {
	Type  models.FileType
	Table string
}

// LoadOrder is the dependency contract of the load: characteristics is
// the root entity the other three reference, so it lands first. The
// loader does not enforce foreign keys; this ordering is what makes them
// resolvable.
var LoadOrder = []TableBinding{
	{Type: models.FileTypeCharacteristics, Table: "characteristics"},
	{Type: models.FileTypeLocations, Table: "locations"},
	{Type: models.FileTypeVehicles, Table: "vehicles"},
	{Type: models.FileTypeUsers, Table: "users"},
}

// Writer bulk-loads one dataset into its target table.
type Writer interface {
	Write(ds models.Dataset) (int64, error)
}

// ParseFunc turns a raw file into a dataset for its logical type.
type ParseFunc func(fileType models.FileType, path string) (models.Dataset, error)

// Orchestrator loads the reconciled files in dependency order, isolating
// failures per file type.
type Orchestrator struct {
	dbManager database.DBManager
	writer    Writer
	parse     ParseFunc
	order     []TableBinding
}

func NewOrchestrator(dbManager database.DBManager, writer Writer) *Orchestrator {
	return &Orchestrator{
		dbManager: dbManager,
		writer:    writer,
		parse:     parser.Parse,
		order:     LoadOrder,
	}
}

// Run attempts each binding of the load order in turn. A file that is
// absent or already processed is skipped; a load error marks that file
// failed (with the error text as reason) and never aborts the remaining
// types. Every status change commits on its own, so a later failure
// cannot roll back an earlier success. The returned results cover every
// attempted type.
func (o *Orchestrator) Run(files models.FileMap) []models.LoadResult {
	var results []models.LoadResult

	for _, binding := range o.order {
		file := files[binding.Type]
		if file == nil {
			continue
		}
		if file.Record.Status == models.StatusProcessed {
			log.Printf("Skipping `%s`: content already processed.", file.FileName)
			continue
		}

		results = append(results, o.loadOne(binding, file))
	}

	return results
}

func (o *Orchestrator) loadOne(binding TableBinding, file *models.DiscoveredFile) models.LoadResult {
	log.Printf("Adding data from `%s` to the '%s' table.", file.FileName, binding.Table)

	ds, err := o.parse(binding.Type, file.Path)
	if err != nil {
		return o.fail(binding, file, err)
	}

	copied, err := o.writer.Write(ds)
	if err != nil {
		return o.fail(binding, file, err)
	}

	file.Record.Status = models.StatusProcessed
	if err := o.dbManager.UpdateFileStatus(file.Record.ID, models.StatusProcessed, ""); err != nil {
		// The rows are committed but the ledger still says pending: the
		// next run would load this file again. Surface it loudly.
		log.Printf("ERROR: rows for `%s` are committed but the ledger update failed: %v", file.FileName, err)
		return models.LoadResult{Type: binding.Type, Status: models.StatusFailed, Rows: copied, Reason: err.Error()}
	}

	log.Printf("Loaded %d rows from `%s` into '%s'.", copied, file.FileName, binding.Table)
	return models.LoadResult{Type: binding.Type, Status: models.StatusProcessed, Rows: copied}
}

func (o *Orchestrator) fail(binding TableBinding, file *models.DiscoveredFile, cause error) models.LoadResult {
	log.Printf("Error while adding `%s` data to the '%s' table: %v", binding.Type, binding.Table, cause)

	file.Record.Status = models.StatusFailed
	file.Record.Reason = cause.Error()
	if err := o.dbManager.UpdateFileStatus(file.Record.ID, models.StatusFailed, cause.Error()); err != nil {
		log.Printf("ERROR: failed to record failure for `%s` in the ledger: %v", file.FileName, err)
	}

	return models.LoadResult{Type: binding.Type, Status: models.StatusFailed, Reason: cause.Error()}
}
