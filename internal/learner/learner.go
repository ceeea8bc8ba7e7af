// v1
// internal/learner/learner.go

// Package learner derives a driver preference profile from the bounded
// action history. Recompute is a pure function of the previous profile and
// the current window; sticky fields keep their prior value whenever the
// window holds no fresh evidence.
package learner

import (
	"sort"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// MinSamples is the history length below which Recompute leaves the
// profile untouched.
const MinSamples = 3

// commonActionThreshold promotes an action into CommonActions once its
// occurrence count in the window reaches it.
const commonActionThreshold = 2

// Preferences is the learner's current estimate of the driver's defaults.
// CommonActions is sorted for stable status output.
type Preferences struct {
	PreferredTemperature  int      `json:"preferred_temperature"`
	PreferredVolume       int      `json:"preferred_volume"`
	PreferredSeatPosition int      `json:"preferred_seat_position"`
	LikesMusic            bool     `json:"likes_music"`
	LikesWarmSeats        bool     `json:"likes_warm_seats"`
	CommonActions         []string `json:"common_actions"`
}

// DefaultPreferences returns a profile aligned with the factory car state.
func DefaultPreferences() Preferences {
	return Preferences{
		PreferredTemperature:  vehicle.DefaultTemperature,
		PreferredVolume:       vehicle.DefaultVolume,
		PreferredSeatPosition: vehicle.DefaultSeatPosition,
	}
}

// Recompute derives the next profile from the current history window,
// oldest event first. Windows shorter than MinSamples return prev as-is.
// Preferred values are overwritten only when the window contains at least
// one valued event of the matching action; the boolean flags are assigned
// only on positive evidence. CommonActions is replaced wholesale on every
// call.
func Recompute(prev Preferences, history []vehicle.ActionEvent) Preferences {
	if len(history) < MinSamples {
		return prev
	}
	next := prev

	if mean, ok := truncatedMean(history, vehicle.ActionClimateSetTemp); ok {
		next.PreferredTemperature = mean
	}
	if mean, ok := truncatedMean(history, vehicle.ActionSetVolume); ok {
		next.PreferredVolume = mean
	}
	if mean, ok := truncatedMean(history, vehicle.ActionSeatsAdjust); ok {
		next.PreferredSeatPosition = mean
	}

	counts := make(map[string]int, len(history))
	for _, ev := range history {
		counts[ev.Action]++
	}
	if counts[vehicle.ActionInfotainmentPlay] > 0 {
		next.LikesMusic = true
	}
	if counts[vehicle.ActionSeatsHeatOn] > 0 {
		next.LikesWarmSeats = true
	}

	var common []string
	for name, n := range counts {
		if n >= commonActionThreshold {
			common = append(common, name)
		}
	}
	sort.Strings(common)
	next.CommonActions = common
	return next
}

// truncatedMean computes the integer-truncated mean of the values carried
// by entries of the given action. ok is false when the window holds no
// valued entry of that action.
func truncatedMean(history []vehicle.ActionEvent, action string) (int, bool) {
	var sum float64
	var n int
	for _, ev := range history {
		if ev.Action != action || !ev.HasValue() {
			continue
		}
		sum += *ev.Value
		n++
	}
	if n == 0 {
		return 0, false
	}
	return int(sum / float64(n)), true
}
