// v0
// internal/vehicle/actions.go
package vehicle

// Canonical action names reported on the vehicle/actions topic. The set
// mirrors the dashboard controls; unknown names are tolerated upstream so
// new controls can ship before the assistant learns about them.
const (
	ActionClimateTurnOn    = "climate_turn_on"
	ActionClimateTurnOff   = "climate_turn_off"
	ActionClimateSetTemp   = "climate_set_temperature"
	ActionClimateIncrease  = "climate_increase"
	ActionClimateDecrease  = "climate_decrease"
	ActionInfotainmentPlay = "infotainment_play"
	ActionInfotainmentStop = "infotainment_stop"
	ActionVolumeUp         = "infotainment_volume_up"
	ActionVolumeDown       = "infotainment_volume_down"
	ActionSetVolume        = "infotainment_set_volume"
	ActionLightsTurnOn     = "lights_turn_on"
	ActionLightsTurnOff    = "lights_turn_off"
	ActionLightsDim        = "lights_dim"
	ActionLightsBrighten   = "lights_brighten"
	ActionSeatsHeatOn      = "seats_heat_on"
	ActionSeatsHeatOff     = "seats_heat_off"
	ActionSeatsAdjust      = "seats_adjust"
)

// ActionTakeBreak is emitted by the assistant itself on the recommendation
// topic. It never arrives as an inbound vehicle action.
const ActionTakeBreak = "take_break"

var knownActions = map[string]struct{}{
	ActionClimateTurnOn:    {},
	ActionClimateTurnOff:   {},
	ActionClimateSetTemp:   {},
	ActionClimateIncrease:  {},
	ActionClimateDecrease:  {},
	ActionInfotainmentPlay: {},
	ActionInfotainmentStop: {},
	ActionVolumeUp:         {},
	ActionVolumeDown:       {},
	ActionSetVolume:        {},
	ActionLightsTurnOn:     {},
	ActionLightsTurnOff:    {},
	ActionLightsDim:        {},
	ActionLightsBrighten:   {},
	ActionSeatsHeatOn:      {},
	ActionSeatsHeatOff:     {},
	ActionSeatsAdjust:      {},
}

// KnownAction reports whether name is part of the canonical action set.
func KnownAction(name string) bool {
	_, ok := knownActions[name]
	return ok
}

// RequiresValue reports whether the action only has an effect when the
// event carries a numeric value.
func RequiresValue(name string) bool {
	switch name {
	case ActionClimateSetTemp, ActionSetVolume, ActionSeatsAdjust:
		return true
	default:
		return false
	}
}

// Actions returns the canonical action names in a stable order, useful for
// simulators and dataset tooling.
func Actions() []string {
	return []string{
		ActionClimateTurnOn,
		ActionClimateTurnOff,
		ActionClimateSetTemp,
		ActionClimateIncrease,
		ActionClimateDecrease,
		ActionInfotainmentPlay,
		ActionInfotainmentStop,
		ActionVolumeUp,
		ActionVolumeDown,
		ActionSetVolume,
		ActionLightsTurnOn,
		ActionLightsTurnOff,
		ActionLightsDim,
		ActionLightsBrighten,
		ActionSeatsHeatOn,
		ActionSeatsHeatOff,
		ActionSeatsAdjust,
	}
}
