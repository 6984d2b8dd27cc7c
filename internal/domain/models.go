package domain

import (
	"errors"
	"strings"
)

// ErrEmptyManufacturer is returned when a lookup is requested for a blank make
var ErrEmptyManufacturer = errors.New("manufacturer is empty")

// RecordsKind selects which vehicle records are looked up for a make
type RecordsKind string

const (
	RecordsModels RecordsKind = "models"
	RecordsTypes  RecordsKind = "types"
)

// Valid reports whether k names a known lookup
func (k RecordsKind) Valid() bool {
	return k == RecordsModels || k == RecordsTypes
}

// Noun returns the plural noun used in user-facing messages
func (k RecordsKind) Noun() string {
	if k == RecordsTypes {
		return "vehicle types"
	}
	return "models"
}

// NormalizeManufacturer trims the make and reports whether it is usable
func NormalizeManufacturer(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyManufacturer
	}
	return name, nil
}

// ModelRecord is one make/model pairing returned by the vehicle API
type ModelRecord struct {
	MakeID    int
	MakeName  string
	ModelID   int
	ModelName string
}

// VehicleTypeRecord is a vehicle type associated with a make
type VehicleTypeRecord struct {
	VehicleTypeID   int
	VehicleTypeName string
}

// Record is the display projection shared by models and vehicle types
type Record struct {
	Name string `json:"name"`
}

// ImageResult is a photo reference for a make
type ImageResult struct {
	URL      string `json:"url"`
	Author   string `json:"author,omitempty"`
	HTMLLink string `json:"html_link,omitempty"`
}

// ModelsToRecords keeps at most limit models in response order
func ModelsToRecords(models []ModelRecord, limit int) []Record {
	records := make([]Record, 0, min(len(models), limit))
	for _, m := range models {
		if len(records) >= limit {
			break
		}
		records = append(records, Record{Name: m.ModelName})
	}
	return records
}

// TypesToRecords drops repeated type names, first occurrence wins, then keeps at most limit
func TypesToRecords(types []VehicleTypeRecord, limit int) []Record {
	seen := make(map[string]bool, len(types))
	records := make([]Record, 0, min(len(types), limit))
	for _, t := range types {
		if seen[t.VehicleTypeName] {
			continue
		}
		seen[t.VehicleTypeName] = true
		if len(records) >= limit {
			break
		}
		records = append(records, Record{Name: t.VehicleTypeName})
	}
	return records
}
