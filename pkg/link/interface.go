package link

import "github.com/itohio/gopedal/pkg/diag"

// Device defines the interface for pedal boards (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Reports() <-chan diag.Report
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
