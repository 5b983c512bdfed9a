package coldplate

import (
	"context"

	"github.com/robotalks/coldplate.go/pkg/comm"
)

// Version returns the firmware version.
func (d *Device) Version(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("getVersion"))
}

// Description returns the model information.
func (d *Device) Description(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("getDescription"))
}

// VersionInfo returns the model information followed by the version.
func (d *Device) VersionInfo(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("v"))
}

// Info returns the boot screen text without self-test information.
func (d *Device) Info(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("info"))
}

// Serial returns the device serial number.
func (d *Device) Serial(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("getSerial"))
}

// ErrorList returns the errors and warnings raised during processing.
func (d *Device) ErrorList(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("gel"))
}
