package port

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialMode is the line setting of the ColdPlate: 9600-8-N-1 without handshake.
var SerialMode = serial.Mode{
	BaudRate: 9600,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// OpenSerial opens a local serial port.
func OpenSerial(name string) (Port, error) {
	mode := SerialMode
	p, err := serial.Open(name, &mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", name, err)
	}
	return p, nil
}
