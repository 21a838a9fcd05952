package ingestion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rsignoret/road-accidents-db/internal/models"
)

func TestTableWriter_Write_ReportsProgressPerRow(t *testing.T) {
	dbManager := new(MockDBManager)
	writer := NewTableWriter(dbManager)

	ds := models.NewDataset([]models.Characteristic{{NumAcc: 1}, {NumAcc: 2}, {NumAcc: 3}})

	var progressTicks int
	dbManager.On("CopyDataset", ds, mock.Anything).Run(func(args mock.Arguments) {
		onRow := args.Get(1).(func())
		for i := 0; i < ds.Len(); i++ {
			onRow()
			progressTicks++
		}
	}).Return(int64(3), nil).Once()

	copied, err := writer.Write(ds)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), copied)
	assert.Equal(t, 3, progressTicks)
	dbManager.AssertExpectations(t)
}

func TestTableWriter_Write_SurfacesCopyErrors(t *testing.T) {
	dbManager := new(MockDBManager)
	writer := NewTableWriter(dbManager)

	ds := models.NewDataset([]models.Vehicle{{NumAcc: 1}})
	dbManager.On("CopyDataset", ds, mock.Anything).
		Return(int64(0), fmt.Errorf("constraint violation")).Once()

	_, err := writer.Write(ds)

	assert.Error(t, err)
	dbManager.AssertExpectations(t)
}
