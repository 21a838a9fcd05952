package ingestion

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsignoret/road-accidents-db/internal/models"
	"github.com/rsignoret/road-accidents-db/pkg/checksum"
)

// fileNamePrefixes classifies raw files by name. The public dataset ships
// French names (caracteristiques-2021.csv, lieux-2021.csv, ...); the
// English logical-type names are accepted too.
var fileNamePrefixes = map[models.FileType][]string{
	models.FileTypeCharacteristics: {"caracteristiques", "characteristics"},
	models.FileTypeLocations:       {"lieux", "locations"},
	models.FileTypeVehicles:        {"vehicules", "vehicles"},
	models.FileTypeUsers:           {"usagers", "users"},
}

// Scanner discovers the raw accident files under a root directory and
// computes their content checksums.
type Scanner struct {
	checksumFn checksum.FileFunc
}

func NewScanner(checksumFn checksum.FileFunc) *Scanner {
	return &Scanner{checksumFn: checksumFn}
}

// Scan walks the root directory and returns at most one discovered file
// per logical type. Files that match no known prefix are ignored; a
// second match for an already-seen type is logged and skipped.
func (s *Scanner) Scan(rootPath string) (models.FileMap, error) {
	files := make(models.FileMap)
	log.Printf("Scanning for raw accident files in: %s", rootPath)

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		fileType, ok := classifyFileName(info.Name())
		if !ok {
			return nil
		}
		if existing := files[fileType]; existing != nil {
			log.Printf("WARN: Found a second %s file %s; keeping %s.", fileType, path, existing.Path)
			return nil
		}

		sum, err := s.checksumFn(path)
		if err != nil {
			return fmt.Errorf("failed to checksum %s: %w", path, err)
		}

		files[fileType] = &models.DiscoveredFile{
			Type:     fileType,
			Path:     path,
			FileName: info.Name(),
			DirName:  filepath.Base(filepath.Dir(path)),
			Checksum: sum,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", rootPath, err)
	}

	log.Printf("Discovered %d raw accident files.", len(files))
	return files, nil
}

func classifyFileName(name string) (models.FileType, bool) {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".csv") {
		return "", false
	}
	for _, fileType := range models.AllFileTypes {
		for _, prefix := range fileNamePrefixes[fileType] {
			if strings.HasPrefix(lower, prefix) {
				return fileType, true
			}
		}
	}
	return "", false
}
