package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeManufacturer(t *testing.T) {
	got, err := NormalizeManufacturer("  Tesla \n")
	require.NoError(t, err)
	assert.Equal(t, "Tesla", got)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeManufacturer(in)
		assert.ErrorIs(t, err, ErrEmptyManufacturer, "input %q", in)
	}
}

func TestModelsToRecordsCapsInResponseOrder(t *testing.T) {
	models := make([]ModelRecord, 12)
	for i := range models {
		models[i] = ModelRecord{ModelName: fmt.Sprintf("Model %02d", i)}
	}

	got := ModelsToRecords(models, 10)
	require.Len(t, got, 10)
	for i, r := range got {
		assert.Equal(t, fmt.Sprintf("Model %02d", i), r.Name)
	}

	assert.Len(t, ModelsToRecords(models[:3], 10), 3)
	assert.Empty(t, ModelsToRecords(nil, 10))
}

func TestTypesToRecordsDedupesFirstOccurrence(t *testing.T) {
	types := []VehicleTypeRecord{
		{VehicleTypeID: 2, VehicleTypeName: "Passenger Car"},
		{VehicleTypeID: 7, VehicleTypeName: "Multipurpose Passenger Vehicle (MPV)"},
		{VehicleTypeID: 2, VehicleTypeName: "Passenger Car"},
		{VehicleTypeID: 3, VehicleTypeName: "Truck"},
		{VehicleTypeID: 7, VehicleTypeName: "Multipurpose Passenger Vehicle (MPV)"},
	}

	got := TypesToRecords(types, 10)
	assert.Equal(t, []Record{
		{Name: "Passenger Car"},
		{Name: "Multipurpose Passenger Vehicle (MPV)"},
		{Name: "Truck"},
	}, got)

	assert.Equal(t, []Record{{Name: "Passenger Car"}, {Name: "Multipurpose Passenger Vehicle (MPV)"}}, TypesToRecords(types, 2))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "No models found.", RecordsMessage(RecordsModels, NoResults))
	assert.Equal(t, "Failed to fetch models.", RecordsMessage(RecordsModels, RequestFailed))
	assert.Equal(t, "No vehicle types found.", RecordsMessage(RecordsTypes, NoResults))
	assert.Equal(t, "Failed to fetch vehicle types.", RecordsMessage(RecordsTypes, RequestFailed))
	assert.Equal(t, "No images found for this car make.", ImageMessage(NoResults))
	assert.Equal(t, "Failed to fetch image.", ImageMessage(RequestFailed))
	assert.Equal(t, "request_failed", RequestFailed.String())
}

func TestRecordsKindValid(t *testing.T) {
	assert.True(t, RecordsModels.Valid())
	assert.True(t, RecordsTypes.Valid())
	assert.False(t, RecordsKind("trims").Valid())
}
