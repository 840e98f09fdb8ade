// Package telem connects the parameter store to a telemetry link: the
// external collaborator a ground control station uses to read and tune
// parameters while the vehicle runs.
package telem

// Link is the telemetry link consumed by the tuner.
type Link interface {
	// SetParams pushes the validated parameter array into the link's
	// parameter table, typically once after the store loads.
	SetParams(values []float32) error
	// UpdatedParam returns the index of a parameter the remote operator
	// changed. It reports at most one index per call; ok is false when
	// no update is waiting.
	UpdatedParam() (index int, ok bool)
	// Param retrieves the value most recently received for slot i.
	Param(i int) float32
}

// Acker is optionally implemented by links able to confirm a persisted
// update back to the operator.
type Acker interface {
	AckParam(i int, v float32) error
}

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
