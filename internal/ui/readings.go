package ui

import (
	"fmt"
	"strconv"

	"github.com/muurk/printlink/internal/protocol"
)

// StatusFields lists a decoded M119 status for display
func StatusFields(s *protocol.PrinterStatus) []Field {
	return []Field{
		{Key: "Machine", Value: s.MachineStatus.String()},
		{Key: "Move mode", Value: s.MoveMode.String()},
		{Key: "Endstop X", Value: formatEndstop(s.Endstop.X)},
		{Key: "Endstop Y", Value: formatEndstop(s.Endstop.Y)},
		{Key: "Endstop Z", Value: formatEndstop(s.Endstop.Z)},
	}
}

// TemperatureFields lists decoded M105 readings for display
func TemperatureFields(t *protocol.PrinterTemperature) []Field {
	return []Field{
		{Key: "Extruder", Value: FormatTemperature(t.Extruder, t.ExtruderTarget)},
		{Key: "Build plate", Value: FormatTemperature(t.BuildPlate, t.BuildPlateTarget)},
	}
}

// MachineInfoFields lists decoded M115 information for display
func MachineInfoFields(m *protocol.MachineInfo) []Field {
	return []Field{
		{Key: "Type", Value: m.MachineType.String()},
		{Key: "Name", Value: m.MachineName.String()},
		{Key: "Firmware", Value: m.Firmware.String()},
		{Key: "Serial", Value: m.SerialNumber.String()},
		{Key: "Tools", Value: m.ToolCount.String()},
		{Key: "Build volume", Value: formatVolume(m.BuildVolume)},
	}
}

// FormatTemperature renders "210.0 °C / 215 °C", or "unknown"
func FormatTemperature(current, target protocol.Optional[float64]) string {
	c, ok := current.Get()
	if !ok {
		return "unknown"
	}
	s := fmt.Sprintf("%.1f °C", c)
	if t, ok := target.Get(); ok {
		s += fmt.Sprintf(" / %s °C", strconv.FormatFloat(t, 'f', -1, 64))
	}
	return s
}

func formatEndstop(v protocol.Optional[float64]) string {
	f, ok := v.Get()
	switch {
	case !ok:
		return "unknown"
	case f != 0:
		return "triggered"
	default:
		return "open"
	}
}

func formatVolume(v protocol.BuildVolume) string {
	if !v.X.IsKnown() && !v.Y.IsKnown() && !v.Z.IsKnown() {
		return "unknown"
	}
	return fmt.Sprintf("%s × %s × %s mm", v.X, v.Y, v.Z)
}
