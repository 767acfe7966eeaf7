// Package epoch slices filtered signal into fixed-length overlapping
// windows.
package epoch

import (
	"github.com/dudk/asymmetry/signal"
)

// Extractor walks the time axis with fixed stride.
type Extractor struct {
	samples int
	stride  int
}

// New returns extractor of epochs with provided length and stride in
// samples. Both are expected to be positive.
func New(epochSamples, stride int) Extractor {
	return Extractor{
		samples: epochSamples,
		stride:  stride,
	}
}

// Samples returns epoch length.
func (e Extractor) Samples() int {
	return e.samples
}

// Stride returns distance between epoch starts.
func (e Extractor) Stride() int {
	return e.stride
}

// Count returns number of epochs that fit into total samples.
func (e Extractor) Count(total int) int {
	if e.samples <= 0 || e.stride <= 0 || total < e.samples {
		return 0
	}
	return (total-e.samples)/e.stride + 1
}

// Extract returns epochs in time order. Every epoch is a view on the
// provided data, channel dimension is kept as is. Empty result is
// returned when data is shorter than one epoch.
func (e Extractor) Extract(data signal.Float64) []signal.Float64 {
	count := e.Count(data.Size())
	if count == 0 {
		return nil
	}
	epochs := make([]signal.Float64, 0, count)
	for start := 0; start+e.samples <= data.Size(); start += e.stride {
		epoch := make(signal.Float64, data.NumChannels())
		for i := range data {
			epoch[i] = data[i][start : start+e.samples : start+e.samples]
		}
		epochs = append(epochs, epoch)
	}
	return epochs
}
