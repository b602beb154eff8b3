//go:build !tunable

package uci

// Tunable search parameters are compiled out by default; build with
// -tags tunable to expose them as UCI spin options for SPSA-style tuning.
func printTunableOptions() {}

func setTunableOption(name, value string) {}
