package model

// MissionStatus tracks where the simulated drone is in its flight sequence.
type MissionStatus string

const (
	MissionIdle          MissionStatus = "idle"
	MissionConnected     MissionStatus = "connected"
	MissionInProgress    MissionStatus = "in_progress"
	MissionReturningHome MissionStatus = "returning_home"
	MissionLanded        MissionStatus = "landed"
	MissionEmergency     MissionStatus = "emergency_landing"
)

// DroneStatus is a snapshot of the simulated drone state.
type DroneStatus struct {
	Battery   int           `json:"battery"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Altitude  float64       `json:"altitude"`
	IsFlying  bool          `json:"is_flying"`
	Mission   MissionStatus `json:"mission_status"`
}
