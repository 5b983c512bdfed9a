// Package sim simulates a ColdPlate speaking the serial protocol.
//
// A ColdPlate behaves like an open serial port: commands written to it
// are executed when the carriage return arrives and their replies become
// readable immediately. Replies can be scripted per command to reproduce
// device behavior a test depends on.
package sim
