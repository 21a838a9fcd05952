// Package parser turns the semicolon-delimited road-accident CSV files
// into typed datasets ready for bulk insertion. Any malformed value is an
// error for the whole file: the caller records the failure on the ledger
// and moves on to the next file type.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rsignoret/road-accidents-db/internal/models"
)

// Parse reads the file at path as the given logical type and returns its
// rows as a dataset bound for the matching entity table.
func Parse(fileType models.FileType, filePath string) (models.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", filePath, err)
	}
	columns := indexColumns(header)

	switch fileType {
	case models.FileTypeCharacteristics:
		return parseCharacteristics(reader, columns, filePath)
	case models.FileTypeLocations:
		return parseLocations(reader, columns, filePath)
	case models.FileTypeVehicles:
		return parseVehicles(reader, columns, filePath)
	case models.FileTypeUsers:
		return parseUsers(reader, columns, filePath)
	default:
		return nil, fmt.Errorf("unknown file type %q", fileType)
	}
}

// indexColumns maps lowercased header names to their position. The BAAC
// files capitalize Num_Acc but otherwise use lowercase names.
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func requireColumns(columns map[string]int, filePath string, names ...string) error {
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("file %s is missing required column %q", filePath, name)
		}
	}
	return nil
}

// fieldReader reads named fields out of one CSV record, accumulating the
// first conversion error so call sites stay flat.
type fieldReader struct {
	record  []string
	columns map[string]int
	line    int
	path    string
	err     error
}

func (r *fieldReader) Str(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// Int converts a numeric field. An empty cell becomes the dataset's -1
// missing-value sentinel.
func (r *fieldReader) Int(name string) int {
	raw := r.Str(name)
	if raw == "" || raw == "." {
		return -1
	}
	value, err := strconv.Atoi(raw)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d of %s: invalid integer %q in column %q", r.line, r.path, raw, name)
	}
	return value
}

// Int64 converts the accident identifier; unlike other numerics it must
// be present.
func (r *fieldReader) Int64(name string) int64 {
	raw := r.Str(name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d of %s: invalid identifier %q in column %q", r.line, r.path, raw, name)
	}
	return value
}

// Float converts a coordinate field. The dataset writes decimals with a
// comma.
func (r *fieldReader) Float(name string) float64 {
	raw := strings.Replace(r.Str(name), ",", ".", 1)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d of %s: invalid decimal %q in column %q", r.line, r.path, raw, name)
	}
	return value
}

// forEachRecord drives the read loop shared by the four parse functions.
func forEachRecord(reader *csv.Reader, columns map[string]int, filePath string, handle func(r *fieldReader) error) error {
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read record at line %d of %s: %w", line, filePath, err)
		}

		r := &fieldReader{record: record, columns: columns, line: line, path: filePath}
		if err := handle(r); err != nil {
			return err
		}
	}
}

func parseCharacteristics(reader *csv.Reader, columns map[string]int, filePath string) (models.Dataset, error) {
	// The 2019+ BAAC format names these columns "agg" and "int".
	err := requireColumns(columns, filePath,
		"num_acc", "jour", "mois", "an", "hrmn", "lum", "dep", "com", "agg", "int", "atm", "col")
	if err != nil {
		return nil, err
	}

	var items []models.Characteristic
	err = forEachRecord(reader, columns, filePath, func(r *fieldReader) error {
		item := models.Characteristic{
			NumAcc:        r.Int64("num_acc"),
			Jour:          r.Int("jour"),
			Mois:          r.Int("mois"),
			An:            r.Int("an"),
			Hrmn:          r.Str("hrmn"),
			Lum:           r.Int("lum"),
			Dep:           r.Str("dep"),
			Com:           r.Str("com"),
			Agglomeration: r.Int("agg"),
			Intersec:      r.Int("int"),
			Atm:           r.Int("atm"),
			Col:           r.Int("col"),
			Adr:           r.Str("adr"),
			Lat:           r.Float("lat"),
			Long:          r.Float("long"),
		}
		if r.err != nil {
			return r.err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.NewDataset(items), nil
}

func parseLocations(reader *csv.Reader, columns map[string]int, filePath string) (models.Dataset, error) {
	err := requireColumns(columns, filePath,
		"num_acc", "catr", "circ", "nbv", "vosp", "prof", "plan", "surf", "infra", "situ")
	if err != nil {
		return nil, err
	}

	var items []models.Location
	err = forEachRecord(reader, columns, filePath, func(r *fieldReader) error {
		item := models.Location{
			NumAcc: r.Int64("num_acc"),
			Catr:   r.Int("catr"),
			Voie:   r.Str("voie"),
			Circ:   r.Int("circ"),
			Nbv:    r.Int("nbv"),
			Vosp:   r.Int("vosp"),
			Prof:   r.Int("prof"),
			Plan:   r.Int("plan"),
			Surf:   r.Int("surf"),
			Infra:  r.Int("infra"),
			Situ:   r.Int("situ"),
			Vma:    r.Int("vma"),
		}
		if r.err != nil {
			return r.err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.NewDataset(items), nil
}

func parseVehicles(reader *csv.Reader, columns map[string]int, filePath string) (models.Dataset, error) {
	err := requireColumns(columns, filePath,
		"num_acc", "num_veh", "senc", "catv", "obs", "obsm", "choc", "manv")
	if err != nil {
		return nil, err
	}

	var items []models.Vehicle
	err = forEachRecord(reader, columns, filePath, func(r *fieldReader) error {
		item := models.Vehicle{
			NumAcc:     r.Int64("num_acc"),
			IDVehicule: r.Str("id_vehicule"),
			NumVeh:     r.Str("num_veh"),
			Senc:       r.Int("senc"),
			Catv:       r.Int("catv"),
			Obs:        r.Int("obs"),
			Obsm:       r.Int("obsm"),
			Choc:       r.Int("choc"),
			Manv:       r.Int("manv"),
			Motor:      r.Int("motor"),
			Occutc:     r.Int("occutc"),
		}
		if r.err != nil {
			return r.err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.NewDataset(items), nil
}

func parseUsers(reader *csv.Reader, columns map[string]int, filePath string) (models.Dataset, error) {
	err := requireColumns(columns, filePath,
		"num_acc", "num_veh", "place", "catu", "grav", "sexe", "an_nais", "trajet")
	if err != nil {
		return nil, err
	}

	var items []models.User
	err = forEachRecord(reader, columns, filePath, func(r *fieldReader) error {
		item := models.User{
			NumAcc:     r.Int64("num_acc"),
			IDVehicule: r.Str("id_vehicule"),
			NumVeh:     r.Str("num_veh"),
			Place:      r.Int("place"),
			Catu:       r.Int("catu"),
			Grav:       r.Int("grav"),
			Sexe:       r.Int("sexe"),
			AnNais:     r.Int("an_nais"),
			Trajet:     r.Int("trajet"),
			Locp:       r.Int("locp"),
			Actp:       r.Str("actp"),
			Etatp:      r.Int("etatp"),
		}
		if r.err != nil {
			return r.err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.NewDataset(items), nil
}
