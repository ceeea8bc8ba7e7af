// v1
// internal/advisor/phrases.go
package advisor

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// Chooser picks an index in [0, n). The engine draws all phrasing through
// it so tests can pin the selection; the default draws from math/rand.
type Chooser func(n int) int

func randomChooser(n int) int {
	return rand.Intn(n)
}

// greetings open every preference-derived suggestion.
var greetings = []string{
	"Hello! Based on your preferences,",
	"Hi! I noticed you usually prefer this, so",
	"Hello! From your driving patterns,",
	"Hi again! Your typical routine suggests",
}

// suggestionPhrases holds the template pool per suggestible action. The
// {value} placeholder receives the suggested number where one applies.
var suggestionPhrases = map[string][]string{
	vehicle.ActionClimateTurnOn: {
		"would you like me to turn on the climate control?",
		"should I start the climate system for you?",
		"shall we get the climate going?",
	},
	vehicle.ActionClimateSetTemp: {
		"would you like to set the temperature to {value}°C?",
		"should I adjust the temperature to your usual {value}°C?",
		"shall we set it to your preferred {value}°C?",
	},
	vehicle.ActionInfotainmentPlay: {
		"would you like to listen to some music?",
		"should I start playing your music?",
		"shall we get some tunes going?",
	},
	vehicle.ActionSetVolume: {
		"would you like to set the volume to {value}%?",
		"should I adjust the volume to your usual {value}%?",
		"shall we set the volume to {value}%?",
	},
	vehicle.ActionLightsTurnOn: {
		"would you like me to turn on the ambient lights?",
		"should I turn on the lighting for you?",
		"shall we brighten things up?",
	},
	vehicle.ActionLightsTurnOff: {
		"would you like me to turn off the ambient lights?",
		"should I dim the lights for you?",
		"shall we turn off the lighting?",
	},
	vehicle.ActionSeatsHeatOn: {
		"would you like me to warm up your seat?",
		"should I turn on the seat heating?",
		"shall we get your seat nice and warm?",
	},
	vehicle.ActionSeatsAdjust: {
		"would you like me to adjust your seat to position {value}?",
		"should I move your seat to your usual position {value}?",
		"shall we adjust the seat to your preferred setting?",
	},
}

// Lighting suggestions skip the greeting pool and use a fixed sentence per
// direction.
const (
	darkLightsMessage     = "It's getting dark, would you like me to turn on the ambient lights for a cozy atmosphere?"
	daylightLightsMessage = "It's bright outside, would you like me to turn off the ambient lights to save energy?"
)

var breakMessages = []string{
	"You've been driving for a while now. Would you like to take a break? Your safety is important!",
	"Time for a quick break! You've been on the road for over 3 minutes. Shall we find a rest stop?",
	"Hey there! Consider taking a short break - you've been driving for quite some time now.",
	"Safety first! You've been driving continuously. Would you like to take a breather?",
}

// renderPhrase fills the value placeholder; templates without one pass
// through unchanged.
func renderPhrase(tpl string, value int) string {
	return strings.ReplaceAll(tpl, "{value}", strconv.Itoa(value))
}
