// Package device implements the Insteon device controllers layered on the
// PLM transport: dimmers and thermostats.
//
// Each controller instance exclusively owns one device's state (last
// commanded and last observed values, manual-override and error flags) and
// drives all exchanges for that device through a borrowed transport
// Session. A controller whose address is the all-zero sentinel treats
// every operation as a no-op.
//
// Failures never abort multi-step operations early: the thermostat's
// GetState, GetSchedule and SetSchedule run every step, keep the stored
// state of failed steps unchanged, and fold the step outcomes into one
// aggregate error. Error status is edge-triggered: a device logs one event
// when it enters the error state and one when it recovers, never while the
// status is unchanged.
package device
