package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickerIsDeterministicPerSeed(t *testing.T) {
	first := NewPicker(7)
	second := NewPicker(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first.Quote(), second.Quote())
		assert.Equal(t, first.Reflection(), second.Reflection())
	}
}

func TestPickerDrawsFromLists(t *testing.T) {
	picker := NewPicker(1)
	for i := 0; i < 50; i++ {
		assert.Contains(t, quotes, picker.Quote())
		assert.Contains(t, reflections, picker.Reflection())
	}
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "1 round in 0.5 minutes", Headline(1, 0.5))
	assert.Equal(t, "3 rounds in 12.4 minutes", Headline(3, 12.4))
}
