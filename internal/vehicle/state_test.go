// v0
// internal/vehicle/state_test.go
package vehicle

import "testing"

func fv(v float64) *float64 { return &v }

func TestApplyTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		seed   func(CarState) CarState
		action string
		value  *float64
		check  func(t *testing.T, s CarState)
	}{
		{
			name:   "climate on",
			action: ActionClimateTurnOn,
			check: func(t *testing.T, s CarState) {
				if !s.ClimateOn {
					t.Fatalf("expected climate on")
				}
			},
		},
		{
			name:   "climate off",
			seed:   func(s CarState) CarState { s.ClimateOn = true; return s },
			action: ActionClimateTurnOff,
			check: func(t *testing.T, s CarState) {
				if s.ClimateOn {
					t.Fatalf("expected climate off")
				}
			},
		},
		{
			name:   "set temperature stores value",
			action: ActionClimateSetTemp,
			value:  fv(26),
			check: func(t *testing.T, s CarState) {
				if s.Temperature != 26 {
					t.Fatalf("unexpected temperature: %d", s.Temperature)
				}
			},
		},
		{
			name:   "set temperature without value is a no-op",
			action: ActionClimateSetTemp,
			check: func(t *testing.T, s CarState) {
				if s.Temperature != DefaultTemperature {
					t.Fatalf("temperature changed without value: %d", s.Temperature)
				}
			},
		},
		{
			name:   "play",
			action: ActionInfotainmentPlay,
			check: func(t *testing.T, s CarState) {
				if !s.InfotainmentOn {
					t.Fatalf("expected infotainment on")
				}
			},
		},
		{
			name:   "stop",
			seed:   func(s CarState) CarState { s.InfotainmentOn = true; return s },
			action: ActionInfotainmentStop,
			check: func(t *testing.T, s CarState) {
				if s.InfotainmentOn {
					t.Fatalf("expected infotainment off")
				}
			},
		},
		{
			name:   "set volume stores value",
			action: ActionSetVolume,
			value:  fv(18),
			check: func(t *testing.T, s CarState) {
				if s.Volume != 18 {
					t.Fatalf("unexpected volume: %d", s.Volume)
				}
			},
		},
		{
			name:   "lights on",
			action: ActionLightsTurnOn,
			check: func(t *testing.T, s CarState) {
				if !s.LightsOn {
					t.Fatalf("expected lights on")
				}
			},
		},
		{
			name:   "seats heat on",
			action: ActionSeatsHeatOn,
			check: func(t *testing.T, s CarState) {
				if !s.SeatsHeated {
					t.Fatalf("expected seats heated")
				}
			},
		},
		{
			name:   "seat adjust stores value",
			action: ActionSeatsAdjust,
			value:  fv(3),
			check: func(t *testing.T, s CarState) {
				if s.SeatPosition != 3 {
					t.Fatalf("unexpected seat position: %d", s.SeatPosition)
				}
			},
		},
		{
			name:   "seat adjust without value is a no-op",
			action: ActionSeatsAdjust,
			check: func(t *testing.T, s CarState) {
				if s.SeatPosition != DefaultSeatPosition {
					t.Fatalf("seat position changed without value: %d", s.SeatPosition)
				}
			},
		},
		{
			name:   "unknown action leaves state untouched",
			action: "sunroof_open",
			check: func(t *testing.T, s CarState) {
				if s != NewCarState() {
					t.Fatalf("state mutated by unknown action: %+v", s)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := NewCarState()
			if tc.seed != nil {
				state = tc.seed(state)
			}
			next := state.Apply(tc.action, tc.value)
			tc.check(t, next)
		})
	}
}

func TestApplyIsPure(t *testing.T) {
	state := NewCarState()
	_ = state.Apply(ActionClimateTurnOn, nil)
	if state.ClimateOn {
		t.Fatalf("Apply mutated its receiver")
	}
}

func TestStepwiseClampTemperature(t *testing.T) {
	state := NewCarState()
	for i := 0; i < 20; i++ {
		state = state.Apply(ActionClimateIncrease, nil)
	}
	if state.Temperature != TemperatureMax {
		t.Fatalf("expected temperature clamped to %d, got %d", TemperatureMax, state.Temperature)
	}
	for i := 0; i < 40; i++ {
		state = state.Apply(ActionClimateDecrease, nil)
	}
	if state.Temperature != TemperatureMin {
		t.Fatalf("expected temperature clamped to %d, got %d", TemperatureMin, state.Temperature)
	}
}

func TestStepwiseClampVolumeAndBrightness(t *testing.T) {
	state := NewCarState()
	for i := 0; i < 12; i++ {
		state = state.Apply(ActionVolumeUp, nil)
	}
	if state.Volume != VolumeMax {
		t.Fatalf("expected volume clamped to %d, got %d", VolumeMax, state.Volume)
	}
	for i := 0; i < 20; i++ {
		state = state.Apply(ActionVolumeDown, nil)
	}
	if state.Volume != VolumeMin {
		t.Fatalf("expected volume clamped to %d, got %d", VolumeMin, state.Volume)
	}
	for i := 0; i < 10; i++ {
		state = state.Apply(ActionLightsDim, nil)
	}
	if state.Brightness != BrightnessMin {
		t.Fatalf("expected brightness clamped to %d, got %d", BrightnessMin, state.Brightness)
	}
	for i := 0; i < 10; i++ {
		state = state.Apply(ActionLightsBrighten, nil)
	}
	if state.Brightness != BrightnessMax {
		t.Fatalf("expected brightness clamped to %d, got %d", BrightnessMax, state.Brightness)
	}
}

func TestDirectSetBypassesClamp(t *testing.T) {
	state := NewCarState()
	state = state.Apply(ActionClimateSetTemp, fv(45))
	if state.Temperature != 45 {
		t.Fatalf("direct set should store value unclamped, got %d", state.Temperature)
	}
	state = state.Apply(ActionSetVolume, fv(150))
	if state.Volume != 150 {
		t.Fatalf("direct set should store value unclamped, got %d", state.Volume)
	}
	// Stepwise actions pull the value back into bounds.
	state = state.Apply(ActionClimateIncrease, nil)
	if state.Temperature != TemperatureMax {
		t.Fatalf("increase should clamp into range, got %d", state.Temperature)
	}
	state = state.Apply(ActionVolumeUp, nil)
	if state.Volume != VolumeMax {
		t.Fatalf("volume up should clamp into range, got %d", state.Volume)
	}
}

func TestKnownActionCatalog(t *testing.T) {
	names := Actions()
	if len(names) != 17 {
		t.Fatalf("expected 17 canonical actions, got %d", len(names))
	}
	for _, name := range names {
		if !KnownAction(name) {
			t.Fatalf("catalog action %q not marked known", name)
		}
	}
	if KnownAction(ActionTakeBreak) {
		t.Fatalf("take_break must not be an inbound action")
	}
	if KnownAction("warp_drive_engage") {
		t.Fatalf("unexpected action marked known")
	}
	if !RequiresValue(ActionSetVolume) || RequiresValue(ActionClimateTurnOn) {
		t.Fatalf("RequiresValue misclassified actions")
	}
}
