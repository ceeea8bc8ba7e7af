// v1
// internal/advisor/rules.go
package advisor

import "github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"

// Evening/night gate for the lighting rule: lights-on is only suggested
// from eveningHour onwards or up to and including morningHour.
const (
	eveningHour = 18
	morningHour = 6
)

// ruleFunc evaluates one eligibility rule against a snapshot. ok is false
// when the rule does not apply this cycle.
type ruleFunc func(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool)

// rules run in declaration order; Generate keeps the first two hits and
// drops later-eligible rules.
var rules = []ruleFunc{
	ruleClimateOn,
	ruleTemperatureMatch,
	ruleMusic,
	ruleVolumeMatch,
	ruleLighting,
	ruleSeatHeat,
	ruleSeatPosition,
}

func ruleClimateOn(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if in.State.ClimateOn || suppressed[vehicle.ActionClimateTurnOn] {
		return Recommendation{}, false
	}
	return Recommendation{
		Action:  vehicle.ActionClimateTurnOn,
		Message: e.greeted(vehicle.ActionClimateTurnOn, 0),
	}, true
}

func ruleTemperatureMatch(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if !in.State.ClimateOn ||
		in.Preferences.PreferredTemperature == in.State.Temperature ||
		suppressed[vehicle.ActionClimateSetTemp] {
		return Recommendation{}, false
	}
	temp := in.Preferences.PreferredTemperature
	return Recommendation{
		Action:  vehicle.ActionClimateSetTemp,
		Message: e.greeted(vehicle.ActionClimateSetTemp, temp),
		Value:   numberValue(temp),
	}, true
}

func ruleMusic(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if in.State.InfotainmentOn ||
		!in.Preferences.LikesMusic ||
		suppressed[vehicle.ActionInfotainmentPlay] {
		return Recommendation{}, false
	}
	return Recommendation{
		Action:  vehicle.ActionInfotainmentPlay,
		Message: e.greeted(vehicle.ActionInfotainmentPlay, 0),
	}, true
}

func ruleVolumeMatch(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if !in.State.InfotainmentOn ||
		in.Preferences.PreferredVolume == in.State.Volume ||
		suppressed[vehicle.ActionSetVolume] {
		return Recommendation{}, false
	}
	vol := in.Preferences.PreferredVolume
	return Recommendation{
		Action:  vehicle.ActionSetVolume,
		Message: e.greeted(vehicle.ActionSetVolume, vol),
		Value:   numberValue(vol),
	}, true
}

func ruleLighting(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	hour := in.Now.Hour()
	if hour >= eveningHour || hour <= morningHour {
		if in.State.LightsOn || suppressed[vehicle.ActionLightsTurnOn] {
			return Recommendation{}, false
		}
		return Recommendation{
			Action:  vehicle.ActionLightsTurnOn,
			Message: darkLightsMessage,
		}, true
	}
	if !in.State.LightsOn || suppressed[vehicle.ActionLightsTurnOff] {
		return Recommendation{}, false
	}
	return Recommendation{
		Action:  vehicle.ActionLightsTurnOff,
		Message: daylightLightsMessage,
	}, true
}

func ruleSeatHeat(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if in.State.SeatsHeated ||
		!in.Preferences.LikesWarmSeats ||
		suppressed[vehicle.ActionSeatsHeatOn] {
		return Recommendation{}, false
	}
	return Recommendation{
		Action:  vehicle.ActionSeatsHeatOn,
		Message: e.greeted(vehicle.ActionSeatsHeatOn, 0),
	}, true
}

func ruleSeatPosition(e *Engine, in Input, suppressed map[string]bool) (Recommendation, bool) {
	if in.Preferences.PreferredSeatPosition == in.State.SeatPosition ||
		suppressed[vehicle.ActionSeatsAdjust] {
		return Recommendation{}, false
	}
	pos := in.Preferences.PreferredSeatPosition
	return Recommendation{
		Action:  vehicle.ActionSeatsAdjust,
		Message: e.greeted(vehicle.ActionSeatsAdjust, pos),
		Value:   numberValue(pos),
	}, true
}
