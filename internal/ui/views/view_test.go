package views

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"carlens/internal/domain"
	"carlens/internal/session"
)

func tesla(n int) session.State {
	recs := make([]domain.Record, n)
	for i := range recs {
		recs[i] = domain.Record{Name: fmt.Sprintf("Model %d", i+1)}
	}
	return session.State{
		Token:        1,
		Manufacturer: "Tesla",
		Records:      recs,
		Image:        domain.ImageResult{URL: "https://img/tesla", Author: "Ann"},
	}
}

func TestRenderWideShowsBothPanes(t *testing.T) {
	out := NewRenderer().Render(ViewState{
		Width:      120,
		Makes:      []string{"Ford", "Tesla"},
		Session:    tesla(12),
		Kind:       domain.RecordsModels,
		MaxRecords: 10,
	})

	assert.Contains(t, out, "Car makes")
	assert.Contains(t, out, "Tesla models")
	assert.Contains(t, out, "Model 10")
	assert.NotContains(t, out, "Model 11")
	assert.Contains(t, out, "https://img/tesla")
	assert.Contains(t, out, "Photo by Ann on Unsplash")
}

func TestRenderNarrowShowsOnePane(t *testing.T) {
	state := ViewState{
		Width:      60,
		Narrow:     true,
		Pane:       PaneDetail,
		Makes:      []string{"Ford", "Tesla"},
		Session:    tesla(12),
		Kind:       domain.RecordsTypes,
		MaxRecords: 5,
	}
	out := NewRenderer().Render(state)
	assert.Contains(t, out, "Tesla vehicle types")
	assert.Contains(t, out, "Model 5")
	assert.NotContains(t, out, "Model 6")
	assert.NotContains(t, out, "Car makes")

	state.Pane = PaneList
	out = NewRenderer().Render(state)
	assert.Contains(t, out, "Car makes")
	assert.NotContains(t, out, "Tesla vehicle types")
}

func TestRenderLoadingAndError(t *testing.T) {
	out := NewRenderer().Render(ViewState{
		Width:   120,
		Spinner: "*",
		Session: session.State{Token: 2, Manufacturer: "Zzzz", Loading: true, Error: "No models found."},
		Kind:    domain.RecordsModels,
	})
	assert.Contains(t, out, "Loading Zzzz")
	assert.Contains(t, out, "No models found.")
}

func TestRenderIdle(t *testing.T) {
	out := NewRenderer().Render(ViewState{Width: 120, Makes: []string{"Ford"}})
	assert.Contains(t, out, "No make selected")
}
