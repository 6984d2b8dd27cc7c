package lookup

import (
	"math/rand"

	"carlens/internal/config"
	"carlens/internal/domain"
)

// Picker chooses one image out of a non-empty result page
type Picker interface {
	Pick(page []domain.ImageResult) domain.ImageResult
}

// FirstPicker always takes the first result
type FirstPicker struct{}

func (FirstPicker) Pick(page []domain.ImageResult) domain.ImageResult {
	return page[0]
}

// RandomPicker takes a uniformly random result
type RandomPicker struct {
	// IntN returns a value in [0, n). Defaults to math/rand.Intn.
	IntN func(n int) int
}

func (p RandomPicker) Pick(page []domain.ImageResult) domain.ImageResult {
	intN := p.IntN
	if intN == nil {
		intN = rand.Intn
	}
	return page[intN(len(page))]
}

// PickerFor maps a configured strategy name to a Picker
func PickerFor(strategy string) Picker {
	if strategy == config.PickFirst {
		return FirstPicker{}
	}
	return RandomPicker{}
}
