// Package drone simulates the survey drone: mission sequencing, battery
// drain and aerial frame capture. Flight control hardware is out of scope;
// the controller only has to feed the imagery pipeline realistic state.
package drone

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
	"github.com/fieldscout/fieldscout/internal/model"
)

// ErrNotFlying is returned when a capture is requested outside a mission.
var ErrNotFlying = errors.New("drone: not flying, no frame to capture")

// ErrLowBattery aborts missions below the safety reserve.
var ErrLowBattery = errors.New("drone: battery below safety reserve")

// missionSteps is the fixed surveillance sequence.
var missionSteps = []string{
	"taking off",
	"reaching survey altitude",
	"starting field scan",
	"capturing images",
	"analyzing field coverage",
	"completing mission",
}

const (
	batteryPerStep  = 5
	batteryReserve  = 20
	surveyAltitude  = 40.0
	defaultStepTime = 500 * time.Millisecond
)

// FrameSource produces the aerial frame returned by CaptureFrame.
type FrameSource func(width, height int) *vegetation.Image

// Controller tracks the simulated drone state across one or more missions.
type Controller struct {
	mu       sync.Mutex
	status   model.DroneStatus
	home     [2]float64 // lat, lon
	frames   FrameSource
	stepTime time.Duration
}

// NewController builds a fully charged, landed drone. A nil source falls
// back to synthetic frames with mixed vegetation.
func NewController(frames FrameSource) *Controller {
	if frames == nil {
		frames = SyntheticFrames(0.5, time.Now().UnixNano())
	}
	return &Controller{
		status: model.DroneStatus{
			Battery: 100,
			Mission: model.MissionIdle,
		},
		frames:   frames,
		stepTime: defaultStepTime,
	}
}

// SetStepTime overrides the simulated per-step duration.
func (c *Controller) SetStepTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepTime = d
}

// Connect simulates establishing the drone link.
func (c *Controller) Connect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.stepTimeLocked() / 2):
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Mission = model.MissionConnected
	log.Println("drone: connected")
	return nil
}

// StartMission runs the surveillance sequence. The mission aborts and the
// drone returns home when the battery hits the safety reserve or ctx is
// cancelled mid-flight.
func (c *Controller) StartMission(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if c.status.Battery <= batteryReserve {
		// Back out of the connected state so the snapshot stays consistent
		// with a grounded drone.
		c.status.Mission = model.MissionIdle
		c.mu.Unlock()
		return ErrLowBattery
	}
	c.status.IsFlying = true
	c.status.Altitude = surveyAltitude
	c.status.Mission = model.MissionInProgress
	c.mu.Unlock()

	for _, step := range missionSteps {
		select {
		case <-ctx.Done():
			c.ReturnToHome()
			return ctx.Err()
		case <-time.After(c.stepTimeLocked()):
		}

		c.mu.Lock()
		log.Printf("drone: mission step: %s", step)
		c.status.Battery -= batteryPerStep
		low := c.status.Battery < batteryReserve
		c.mu.Unlock()

		if low {
			log.Println("drone: low battery, returning home")
			break
		}
	}

	c.ReturnToHome()
	return nil
}

// CaptureFrame returns an aerial frame at the requested resolution. Only a
// flying drone has a camera pointed at the field.
func (c *Controller) CaptureFrame(width, height int) (*vegetation.Image, error) {
	c.mu.Lock()
	flying := c.status.IsFlying
	frames := c.frames
	c.mu.Unlock()

	if !flying {
		return nil, ErrNotFlying
	}
	return frames(width, height), nil
}

// ReturnToHome lands the drone at the launch point.
func (c *Controller) ReturnToHome() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Mission = model.MissionReturningHome
	c.status.IsFlying = false
	c.status.Altitude = 0
	c.status.Latitude, c.status.Longitude = c.home[0], c.home[1]
	c.status.Mission = model.MissionLanded
	log.Println("drone: landed")
}

// EmergencyStop executes the emergency landing procedure.
func (c *Controller) EmergencyStop() {
	c.mu.Lock()
	c.status.Mission = model.MissionEmergency
	c.mu.Unlock()
	log.Println("drone: EMERGENCY STOP")
	c.ReturnToHome()
}

// Status returns a snapshot of the drone state.
func (c *Controller) Status() model.DroneStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// BatteryLevel returns the remaining battery percentage.
func (c *Controller) BatteryLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Battery
}

func (c *Controller) stepTimeLocked() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepTime
}
