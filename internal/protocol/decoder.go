package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// Status response keys (matched case-insensitively)
const (
	keyMachineStatus = "machinestatus"
	keyMoveMode      = "movemode"
	keyEndstop       = "endstop"
)

// Endstop planes (matched case-insensitively)
const (
	planeX = "x-max"
	planeY = "y-max"
	planeZ = "z-max"
)

// Temperature sensor keys (matched exactly)
const (
	sensorExtruder   = "T0"
	sensorBuildPlate = "B"
)

// volumePattern matches one axis of the build volume line "X: 150 Y: 150 Z: 150"
var volumePattern = regexp.MustCompile(`(?i)\b([XYZ]):\s*(-?[0-9]+(?:\.[0-9]+)?)`)

// splitKey splits s on the first colon. ok is false when s has no colon.
func splitKey(s string) (key, rest string, ok bool) {
	key, rest, ok = strings.Cut(s, ":")
	return strings.TrimSpace(key), strings.TrimSpace(rest), ok
}

func parseReading(s string) Optional[float64] {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Unknown[float64]()
	}
	return Known(v)
}

// DecodeStatus decodes the data lines of an M119 response. Unrecognized keys
// and malformed endstop tokens are ignored.
func DecodeStatus(lines []string) *PrinterStatus {
	status := &PrinterStatus{}

	for _, line := range lines {
		key, rest, ok := splitKey(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case keyMachineStatus:
			status.MachineStatus = Known(rest)
		case keyMoveMode:
			status.MoveMode = Known(rest)
		case keyEndstop:
			status.Endstop = decodeEndstop(rest)
		}
	}

	return status
}

// decodeEndstop parses "X-max:0 Y-max:0 Z-max:1".
func decodeEndstop(s string) Endstop {
	var e Endstop

	for _, token := range strings.Fields(s) {
		plane, value, ok := splitKey(token)
		if !ok {
			continue
		}
		reading := parseReading(value)
		if !reading.IsKnown() {
			continue
		}

		switch strings.ToLower(plane) {
		case planeX:
			e.X = reading
		case planeY:
			e.Y = reading
		case planeZ:
			e.Z = reading
		}
	}

	return e
}

// DecodeTemperature decodes the data lines of an M105 response such as
// "T0:220 /230 B:10/55". The value before "/" is the current reading; the
// value after it is the set point. A bare "/230" token is the set point of
// the sensor named just before it.
func DecodeTemperature(lines []string) *PrinterTemperature {
	temp := &PrinterTemperature{}

	for _, line := range lines {
		lastSensor := ""

		for _, token := range strings.Fields(line) {
			if strings.HasPrefix(token, "/") {
				temp.setTarget(lastSensor, parseReading(token[1:]))
				continue
			}

			sensor, value, ok := splitKey(token)
			if !ok {
				lastSensor = ""
				continue
			}
			lastSensor = sensor

			current, target, hasTarget := strings.Cut(value, "/")
			temp.setCurrent(sensor, parseReading(current))
			if hasTarget {
				temp.setTarget(sensor, parseReading(target))
			}
		}
	}

	return temp
}

func (t *PrinterTemperature) setCurrent(sensor string, v Optional[float64]) {
	switch sensor {
	case sensorExtruder:
		t.Extruder = v
	case sensorBuildPlate:
		t.BuildPlate = v
	}
}

func (t *PrinterTemperature) setTarget(sensor string, v Optional[float64]) {
	switch sensor {
	case sensorExtruder:
		t.ExtruderTarget = v
	case sensorBuildPlate:
		t.BuildPlateTarget = v
	}
}

// DecodeMachineInfo decodes the data lines of an M115 response.
func DecodeMachineInfo(lines []string) *MachineInfo {
	info := &MachineInfo{}

	for _, line := range lines {
		key, rest, ok := splitKey(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "machine type":
			info.MachineType = Known(rest)
		case "machine name":
			info.MachineName = Known(rest)
		case "firmware":
			info.Firmware = Known(rest)
		case "sn":
			info.SerialNumber = Known(rest)
		case "tool count":
			if n, err := strconv.Atoi(rest); err == nil {
				info.ToolCount = Known(n)
			}
		case "x":
			info.BuildVolume = decodeBuildVolume(line)
		}
	}

	return info
}

func decodeBuildVolume(line string) BuildVolume {
	var v BuildVolume
	for _, m := range volumePattern.FindAllStringSubmatch(line, -1) {
		reading := parseReading(m[2])
		switch strings.ToUpper(m[1]) {
		case "X":
			v.X = reading
		case "Y":
			v.Y = reading
		case "Z":
			v.Z = reading
		}
	}
	return v
}
