package models

import "time"

// FileType identifies one of the four raw road-accident source files.
type FileType string

const (
	FileTypeCharacteristics FileType = "characteristics"
	FileTypeLocations       FileType = "locations"
	FileTypeVehicles        FileType = "vehicles"
	FileTypeUsers           FileType = "users"
)

// AllFileTypes lists the logical types in their referential dependency
// order: characteristics is the root entity referenced by the other three,
// so it must be loaded first.
var AllFileTypes = []FileType{
	FileTypeCharacteristics,
	FileTypeLocations,
	FileTypeVehicles,
	FileTypeUsers,
}

// ProcessingStatus is the ledger state of a raw file.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// FileRecord is a row of the raw_accident_files ledger table. A file is
// addressed by its content checksum: once a checksum is marked processed
// it is never loaded again, whatever name or path it reappears under.
type FileRecord struct {
	ID           int
	FileType     FileType
	DirName      string
	FileName     string
	Checksum     string
	Status       ProcessingStatus
	Reason       string
	RegisteredAt time.Time
}

// DiscoveredFile bundles a raw file found on disk with its ledger record.
// It lives for one run only and is never persisted.
type DiscoveredFile struct {
	Type     FileType
	Path     string
	FileName string
	DirName  string
	Checksum string
	Record   *FileRecord
}

// FileMap maps each logical type to the single file discovered for it.
type FileMap map[FileType]*DiscoveredFile

// LoadResult is the outcome of loading one file type.
type LoadResult struct {
	Type   FileType
	Status ProcessingStatus
	Rows   int64
	Reason string
}
