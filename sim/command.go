package sim

import "fmt"

// CommandType enumerates the user controls a running simulation accepts.
type CommandType string

const (
	CommandTogglePause CommandType = "pause"
	CommandReset       CommandType = "reset"
	CommandResetClock  CommandType = "reset-clock"
	CommandSpeedUp     CommandType = "faster"
	CommandSlowDown    CommandType = "slower"
	CommandSetScale    CommandType = "set-scale"
)

// Command is a control intent captured off the simulation goroutine and
// applied between ticks.
type Command struct {
	Type  CommandType `json:"type"`
	Scale float64     `json:"scale,omitempty"` // CommandSetScale only
}

// ParseCommandType maps a control name to its CommandType.
func ParseCommandType(name string) (CommandType, error) {
	switch t := CommandType(name); t {
	case CommandTogglePause, CommandReset, CommandResetClock, CommandSpeedUp, CommandSlowDown, CommandSetScale:
		return t, nil
	default:
		return "", fmt.Errorf("unknown command %q", name)
	}
}

// Apply executes the command against the world.
func (c Command) Apply(w *World) error {
	switch c.Type {
	case CommandTogglePause:
		w.TogglePause()
	case CommandReset:
		w.ResetStatistics()
	case CommandResetClock:
		w.ResetClock()
	case CommandSpeedUp:
		w.SpeedUp()
	case CommandSlowDown:
		w.SlowDown()
	case CommandSetScale:
		if c.Scale <= 0 {
			return fmt.Errorf("set-scale: scale must be positive, got %f", c.Scale)
		}
		w.SetTimeScale(c.Scale)
	default:
		return fmt.Errorf("unknown command %q", c.Type)
	}
	return nil
}
