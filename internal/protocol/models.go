package protocol

import "fmt"

// Axis endstop vector reported by the status query
type Endstop struct {
	X Optional[float64] `json:"x"`
	Y Optional[float64] `json:"y"`
	Z Optional[float64] `json:"z"`
}

// PrinterStatus is the decoded response to QueryEndstop (M119)
type PrinterStatus struct {
	MachineStatus Optional[string] `json:"machine_status"`
	MoveMode      Optional[string] `json:"move_mode"`
	Endstop       Endstop          `json:"endstop"`
}

// String returns a debug representation of the status
func (s *PrinterStatus) String() string {
	return fmt.Sprintf("PrinterStatus{machine=%s, move=%s, endstop=[x=%s y=%s z=%s]}",
		s.MachineStatus, s.MoveMode, s.Endstop.X, s.Endstop.Y, s.Endstop.Z)
}

// PrinterTemperature is the decoded response to QueryTemperature (M105).
// The target fields hold the set points the printer reports next to the
// readings; they never feed into Extruder or BuildPlate.
type PrinterTemperature struct {
	Extruder         Optional[float64] `json:"extruder"`
	BuildPlate       Optional[float64] `json:"build_plate"`
	ExtruderTarget   Optional[float64] `json:"extruder_target"`
	BuildPlateTarget Optional[float64] `json:"build_plate_target"`
}

// String returns a debug representation of the temperatures
func (t *PrinterTemperature) String() string {
	return fmt.Sprintf("PrinterTemperature{extruder=%s/%s, build_plate=%s/%s}",
		t.Extruder, t.ExtruderTarget, t.BuildPlate, t.BuildPlateTarget)
}

// BuildVolume is the printable area reported by QueryFirmwareVersion
type BuildVolume struct {
	X Optional[float64] `json:"x"`
	Y Optional[float64] `json:"y"`
	Z Optional[float64] `json:"z"`
}

// MachineInfo is the decoded response to QueryFirmwareVersion (M115)
type MachineInfo struct {
	MachineType  Optional[string] `json:"machine_type"`
	MachineName  Optional[string] `json:"machine_name"`
	Firmware     Optional[string] `json:"firmware"`
	SerialNumber Optional[string] `json:"serial_number"`
	ToolCount    Optional[int]    `json:"tool_count"`
	BuildVolume  BuildVolume      `json:"build_volume"`
}

// String returns a debug representation of the machine info
func (m *MachineInfo) String() string {
	return fmt.Sprintf("MachineInfo{type=%s, name=%s, firmware=%s, sn=%s, tools=%s}",
		m.MachineType, m.MachineName, m.Firmware, m.SerialNumber, m.ToolCount)
}
