package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skmtks/taskboard-api/internal/models"
)

func todoItems(completed ...bool) []models.TodoItem {
	items := make([]models.TodoItem, len(completed))
	for i, c := range completed {
		items[i] = models.TodoItem{Text: "item", Completed: c, SortOrder: i}
	}
	return items
}

func TestDeriveChecklistState_Empty(t *testing.T) {
	state := DeriveChecklistState(nil)

	assert.Equal(t, models.StatusPending, state.Status)
	assert.Equal(t, 0, state.Progress)
}

func TestDeriveChecklistState_NoneCompleted(t *testing.T) {
	state := DeriveChecklistState(todoItems(false, false, false))

	assert.Equal(t, models.StatusPending, state.Status)
	assert.Equal(t, 0, state.Progress)
}

func TestDeriveChecklistState_PartiallyCompleted(t *testing.T) {
	state := DeriveChecklistState(todoItems(true, false))

	assert.Equal(t, models.StatusInProgress, state.Status)
	assert.Equal(t, 50, state.Progress)
}

func TestDeriveChecklistState_AllCompleted(t *testing.T) {
	state := DeriveChecklistState(todoItems(true, true, true))

	assert.Equal(t, models.StatusCompleted, state.Status)
	assert.Equal(t, 100, state.Progress)
}

func TestDeriveChecklistState_Rounding(t *testing.T) {
	oneOfThree := DeriveChecklistState(todoItems(true, false, false))
	assert.Equal(t, models.StatusInProgress, oneOfThree.Status)
	assert.Equal(t, 33, oneOfThree.Progress)

	twoOfThree := DeriveChecklistState(todoItems(true, true, false))
	assert.Equal(t, models.StatusInProgress, twoOfThree.Status)
	assert.Equal(t, 67, twoOfThree.Progress)
}

func TestTruthyCompleted(t *testing.T) {
	truthy := []interface{}{
		true,
		float64(1),
		1,
		int64(1),
		json.Number("1"),
		"1",
		"true",
		"TRUE",
	}
	for _, v := range truthy {
		assert.True(t, TruthyCompleted(v), "%T(%v) should be completed", v, v)
	}

	falsy := []interface{}{
		nil,
		false,
		float64(0),
		float64(2),
		0,
		json.Number("0"),
		"0",
		"false",
		"yes",
		"",
		[]string{"true"},
	}
	for _, v := range falsy {
		assert.False(t, TruthyCompleted(v), "%T(%v) should not be completed", v, v)
	}
}
