package pipe

// State identifies the stage of processing cycle.
type State int

// states
const (
	// AwaitingData means buffer is below filter minimum.
	AwaitingData State = iota
	// Accumulating means buffer can be filtered, but it's shorter than
	// one epoch.
	Accumulating
	// Processing means processing cycle is running.
	Processing
	// Stopped means pipe doesn't receive chunks anymore.
	Stopped
)

func (s State) String() string {
	switch s {
	case AwaitingData:
		return "awaiting data"
	case Accumulating:
		return "accumulating"
	case Processing:
		return "processing"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// next returns state for provided buffer size.
func (p *Pipe) next(size int) State {
	switch {
	case size < p.filter.MinSamples():
		return AwaitingData
	case size < p.epoch.Samples():
		return Accumulating
	default:
		return Processing
	}
}
