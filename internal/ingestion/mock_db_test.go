package ingestion

import (
	"github.com/stretchr/testify/mock"

	"github.com/rsignoret/road-accidents-db/internal/models"
)

// MockDBManager is a mock implementation of the database.DBManager
// interface for testing.
type MockDBManager struct {
	mock.Mock
}

func (m *MockDBManager) InitSchema() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBManager) FindFileRecordsByChecksum(checksum string) ([]models.FileRecord, error) {
	args := m.Called(checksum)
	var records []models.FileRecord
	if v := args.Get(0); v != nil {
		records = v.([]models.FileRecord)
	}
	return records, args.Error(1)
}

func (m *MockDBManager) InsertFileRecords(records []*models.FileRecord) error {
	args := m.Called(records)
	return args.Error(0)
}

func (m *MockDBManager) UpdateFileStatus(id int, status models.ProcessingStatus, reason string) error {
	args := m.Called(id, status, reason)
	return args.Error(0)
}

func (m *MockDBManager) CopyDataset(ds models.Dataset, onRow func()) (int64, error) {
	args := m.Called(ds, onRow)
	return args.Get(0).(int64), args.Error(1)
}
