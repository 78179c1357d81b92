package model

// ConnectivityState mirrors the device's network banner. Sync fires on
// any transition away from OFFLINE; a weak link still counts.
type ConnectivityState string

const (
	ConnectivityOffline   ConnectivityState = "OFFLINE"
	ConnectivityLowSignal ConnectivityState = "2G/EDGE"
	ConnectivityOnline    ConnectivityState = "4G/5G"
)

// Online reports whether any sync-capable link is up.
func (s ConnectivityState) Online() bool {
	return s != ConnectivityOffline && s != ""
}
