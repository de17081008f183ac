// Package logging builds the structured logger shared by all driftd
// components.
//
// It wraps log/slog with the level and format names used in driftd
// configuration, so callers can go straight from config strings to a
// ready logger:
//
//	log := logging.New(logging.Options{Level: "debug", Format: logging.FormatJSON})
//	log.Info("discovery started", "endpoints", 42)
//
// Components accept a *slog.Logger in their constructor; pass
// logging.Nop() where output is unwanted, mostly in tests.
package logging
