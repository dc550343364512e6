// Package insight supplies the short texts shown around a session: a quote on
// the setup form and a closing reflection on the summary.
package insight

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var quotes = []string{
	"Calm is a burrow you carry in your chest.",
	"If a rabbit can stay calm while being prey, so can you.",
	"Less stress, more oxygen. Both are free.",
	"You are not a tortoise, but breathe slowly for a while.",
	"Breathe. It is the only thing you need to get right now.",
	"Be like the air: flow, and try not to bump into the furniture.",
	"Feed that brain some oxygen. You will need it later.",
	"Silence the noise and turn up the volume of your lungs.",
	"Cheaper than a double espresso, and it works better.",
	"Control your breath and you control the urge to shout.",
	"Thousands of breaths begin with a single inhale.",
	"Do not hop into the past or race into the future. Breathe here.",
	"A calm rabbit finds more carrots than a nervous one.",
	"Your mind is a garden. Stop watering the weeds.",
	"Three things cannot stay hidden: the sun, the moon and your need to breathe.",
}

var reflections = []string{
	"Your mind was a jumping monkey. Now it is a rabbit resting in the sun.",
	"Before enlightenment: chop wood, breathe. After: chop wood, breathe better.",
	"Stress is only a thought you had not exhaled yet. It is gone now.",
	"The river flows without effort. So does your blood, full of oxygen.",
	"Everything is impermanent, except the glory of finishing this session.",
	"Sit like a mountain, breathe like the wind.",
	"The bowl is clean and so is your mind. Go and fill both with life.",
	"When you breathe, just breathe. You just did.",
	"The great way has no gate, but you came in through the nose.",
	"The sound of one ear clapping is the silence you feel right now.",
	"You let go of your carbon dioxide. Now let go of being productive.",
	"The great ancestral rabbit would be proud of you.",
}

// Picker draws texts at random.
type Picker struct {
	mu     sync.Mutex
	random *rand.Rand
}

// NewPicker creates a picker; equal seeds give equal sequences.
func NewPicker(seed uint64) *Picker {
	return &Picker{random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Quote returns a motivational line for the setup form.
func (picker *Picker) Quote() string {
	return picker.pick(quotes)
}

// Reflection returns a closing line for the summary.
func (picker *Picker) Reflection() string {
	return picker.pick(reflections)
}

func (picker *Picker) pick(lines []string) string {
	picker.mu.Lock()
	defer picker.mu.Unlock()
	return lines[picker.random.IntN(len(lines))]
}

// Headline summarizes a finished session.
func Headline(rounds int, minutes float64) string {
	unit := "rounds"
	if rounds == 1 {
		unit = "round"
	}
	return fmt.Sprintf("%d %s in %.1f minutes", rounds, unit, minutes)
}
