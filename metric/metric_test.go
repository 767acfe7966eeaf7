package metric_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/asymmetry/metric"
)

func TestMeter(t *testing.T) {
	sampleRate := 256
	var tests = []struct {
		component          string
		routines           int
		messages           int
		size               int64
		expectedSamples    string
		expectedMessages   string
		expectedComponents string
		expectedDuration   string
	}{
		{
			component:          "test.chunks",
			routines:           2,
			messages:           10,
			size:               128,
			expectedSamples:    "2560",
			expectedMessages:   "20",
			expectedComponents: "2",
			expectedDuration:   `"10s"`,
		},
		{
			component:          "test.chunks",
			routines:           2,
			messages:           10,
			size:               128,
			expectedSamples:    "5120",
			expectedMessages:   "40",
			expectedComponents: "4",
			expectedDuration:   `"20s"`,
		},
	}
	measure := func(fn metric.MeasureFunc, wg *sync.WaitGroup, messages int, size int64) {
		for i := 0; i < messages; i++ {
			fn(size)
		}
		wg.Done()
	}

	for _, test := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(test.routines)
		for i := 0; i < test.routines; i++ {
			go measure(metric.Meter(test.component, sampleRate)(), wg, test.messages, test.size)
		}
		wg.Wait()
		values := metric.Get(test.component)
		assert.Equal(t, test.expectedSamples, values[metric.SampleCounter])
		assert.Equal(t, test.expectedMessages, values[metric.MessageCounter])
		assert.Equal(t, test.expectedComponents, values[metric.ComponentCounter])
		assert.Equal(t, test.expectedDuration, values[metric.DurationCounter])
	}
	assert.Contains(t, metric.Components(), "test.chunks")
	assert.Contains(t, metric.GetAll(), "test.chunks")
}
