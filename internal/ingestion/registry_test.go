package ingestion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rsignoret/road-accidents-db/internal/models"
)

func discoveredFile(fileType models.FileType, checksum string) *models.DiscoveredFile {
	return &models.DiscoveredFile{
		Type:     fileType,
		Path:     "/data/raw/" + string(fileType) + "-2021.csv",
		FileName: string(fileType) + "-2021.csv",
		DirName:  "raw",
		Checksum: checksum,
	}
}

func TestRegistry_Reconcile_NewFileGetsPendingRecord(t *testing.T) {
	dbManager := new(MockDBManager)
	registry := NewRegistry(dbManager)

	file := discoveredFile(models.FileTypeCharacteristics, "abc123")
	files := models.FileMap{models.FileTypeCharacteristics: file}

	dbManager.On("FindFileRecordsByChecksum", "abc123").Return(nil, nil).Once()
	dbManager.On("InsertFileRecords", mock.Anything).Run(func(args mock.Arguments) {
		records := args.Get(0).([]*models.FileRecord)
		for i, rec := range records {
			rec.ID = i + 1
		}
	}).Return(nil).Once()

	err := registry.Reconcile(files)

	assert.NoError(t, err)
	if assert.NotNil(t, file.Record) {
		assert.Equal(t, models.StatusPending, file.Record.Status)
		assert.Equal(t, "abc123", file.Record.Checksum)
		assert.Equal(t, 1, file.Record.ID)
	}
	dbManager.AssertExpectations(t)
}

func TestRegistry_Reconcile_ProcessedChecksumIsSkipped(t *testing.T) {
	dbManager := new(MockDBManager)
	registry := NewRegistry(dbManager)

	// Same content rediscovered under a different name: the ledger match
	// is by checksum, not by file name.
	file := discoveredFile(models.FileTypeLocations, "feed00")
	file.FileName = "lieux-renamed.csv"
	files := models.FileMap{models.FileTypeLocations: file}

	existing := []models.FileRecord{
		{ID: 7, FileType: models.FileTypeLocations, FileName: "lieux-2021.csv", Checksum: "feed00", Status: models.StatusFailed},
		{ID: 9, FileType: models.FileTypeLocations, FileName: "lieux-2021.csv", Checksum: "feed00", Status: models.StatusProcessed},
	}
	dbManager.On("FindFileRecordsByChecksum", "feed00").Return(existing, nil).Once()
	dbManager.On("InsertFileRecords", mock.Anything).Return(nil).Once()

	err := registry.Reconcile(files)

	assert.NoError(t, err)
	if assert.NotNil(t, file.Record) {
		assert.Equal(t, models.StatusProcessed, file.Record.Status)
		assert.Equal(t, 9, file.Record.ID)
	}
	// Nothing staged for insertion.
	inserted := dbManager.Calls[len(dbManager.Calls)-1].Arguments.Get(0).([]*models.FileRecord)
	assert.Empty(t, inserted)
	dbManager.AssertExpectations(t)
}

func TestRegistry_Reconcile_FailedChecksumIsRegisteredAgain(t *testing.T) {
	dbManager := new(MockDBManager)
	registry := NewRegistry(dbManager)

	file := discoveredFile(models.FileTypeVehicles, "0ddba11")
	files := models.FileMap{models.FileTypeVehicles: file}

	existing := []models.FileRecord{
		{ID: 3, FileType: models.FileTypeVehicles, Checksum: "0ddba11", Status: models.StatusFailed, Reason: "boom"},
	}
	dbManager.On("FindFileRecordsByChecksum", "0ddba11").Return(existing, nil).Once()
	dbManager.On("InsertFileRecords", mock.Anything).Run(func(args mock.Arguments) {
		records := args.Get(0).([]*models.FileRecord)
		for _, rec := range records {
			rec.ID = 4
		}
	}).Return(nil).Once()

	err := registry.Reconcile(files)

	// A failed load is not terminal: the content is eligible again.
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, file.Record.Status)
	assert.Equal(t, 4, file.Record.ID)
	dbManager.AssertExpectations(t)
}

func TestRegistry_Reconcile_SecondRunIsNoOp(t *testing.T) {
	dbManager := new(MockDBManager)
	registry := NewRegistry(dbManager)

	// The second run rediscovers the same content after a successful
	// load: the ledger now reports it processed.
	file := discoveredFile(models.FileTypeUsers, "cafe42")
	files := models.FileMap{models.FileTypeUsers: file}

	processed := []models.FileRecord{
		{ID: 11, FileType: models.FileTypeUsers, Checksum: "cafe42", Status: models.StatusProcessed},
	}
	dbManager.On("FindFileRecordsByChecksum", "cafe42").Return(processed, nil).Once()
	dbManager.On("InsertFileRecords", mock.Anything).Return(nil).Once()

	err := registry.Reconcile(files)

	assert.NoError(t, err)
	inserted := dbManager.Calls[len(dbManager.Calls)-1].Arguments.Get(0).([]*models.FileRecord)
	assert.Empty(t, inserted, "a processed checksum must not produce a new ledger row")
	dbManager.AssertExpectations(t)
}

func TestRegistry_Reconcile_LedgerLookupFailureAborts(t *testing.T) {
	dbManager := new(MockDBManager)
	registry := NewRegistry(dbManager)

	files := models.FileMap{
		models.FileTypeCharacteristics: discoveredFile(models.FileTypeCharacteristics, "abc123"),
	}

	dbManager.On("FindFileRecordsByChecksum", "abc123").
		Return(nil, fmt.Errorf("connection lost")).Once()

	err := registry.Reconcile(files)

	assert.Error(t, err)
	dbManager.AssertNotCalled(t, "InsertFileRecords", mock.Anything)
}
