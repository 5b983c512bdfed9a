// Package coldplate drives a QInstruments ColdPlate.
//
// A Device wraps a serialized command connection and offers typed
// queries, setpoint management with read-back verification, and the
// convergence and hold loops used to bring the plate to a temperature.
// Status is delivered to an injected Reporter; disruptive operations ask
// an injected Confirmer.
package coldplate
