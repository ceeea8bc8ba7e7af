// v1
// internal/vehicle/state.go
package vehicle

// Temperature, volume and brightness bounds enforced by the stepwise
// actions. Direct set actions store their value as-is.
const (
	TemperatureMin = 16
	TemperatureMax = 30
	VolumeMin      = 0
	VolumeMax      = 100
	BrightnessMin  = 0
	BrightnessMax  = 100
)

// Defaults applied to a fresh session.
const (
	DefaultTemperature  = 22
	DefaultVolume       = 50
	DefaultBrightness   = 80
	DefaultSeatPosition = 5
)

// CarState is a snapshot of the controllable subsystems. Values are plain
// data; Apply returns a new snapshot and never mutates the receiver, so a
// copied CarState is always safe to read without coordination.
type CarState struct {
	ClimateOn      bool `json:"climate_on"`
	Temperature    int  `json:"temperature"`
	InfotainmentOn bool `json:"infotainment_on"`
	Volume         int  `json:"volume"`
	LightsOn       bool `json:"lights_on"`
	Brightness     int  `json:"brightness"`
	SeatsHeated    bool `json:"seats_heated"`
	SeatPosition   int  `json:"seat_position"`
}

// NewCarState returns the factory defaults every session starts from.
func NewCarState() CarState {
	return CarState{
		Temperature:  DefaultTemperature,
		Volume:       DefaultVolume,
		Brightness:   DefaultBrightness,
		SeatPosition: DefaultSeatPosition,
	}
}

// Apply computes the state transition for a single action. Unknown actions
// and set actions without a value leave the state unchanged. Stepwise
// actions clamp into their bounds; direct sets store the value as-is.
func (s CarState) Apply(action string, value *float64) CarState {
	switch action {
	case ActionClimateTurnOn:
		s.ClimateOn = true
	case ActionClimateTurnOff:
		s.ClimateOn = false
	case ActionClimateSetTemp:
		if value != nil {
			s.Temperature = int(*value)
		}
	case ActionClimateIncrease:
		s.Temperature = clamp(s.Temperature+1, TemperatureMin, TemperatureMax)
	case ActionClimateDecrease:
		s.Temperature = clamp(s.Temperature-1, TemperatureMin, TemperatureMax)
	case ActionInfotainmentPlay:
		s.InfotainmentOn = true
	case ActionInfotainmentStop:
		s.InfotainmentOn = false
	case ActionSetVolume:
		if value != nil {
			s.Volume = int(*value)
		}
	case ActionVolumeUp:
		s.Volume = clamp(s.Volume+10, VolumeMin, VolumeMax)
	case ActionVolumeDown:
		s.Volume = clamp(s.Volume-10, VolumeMin, VolumeMax)
	case ActionLightsTurnOn:
		s.LightsOn = true
	case ActionLightsTurnOff:
		s.LightsOn = false
	case ActionLightsDim:
		s.Brightness = clamp(s.Brightness-20, BrightnessMin, BrightnessMax)
	case ActionLightsBrighten:
		s.Brightness = clamp(s.Brightness+20, BrightnessMin, BrightnessMax)
	case ActionSeatsHeatOn:
		s.SeatsHeated = true
	case ActionSeatsHeatOff:
		s.SeatsHeated = false
	case ActionSeatsAdjust:
		if value != nil {
			s.SeatPosition = int(*value)
		}
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
