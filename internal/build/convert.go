package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/markdown"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
)

// timedConverter reports every conversion to the recorder.
type timedConverter struct {
	markdown.Converter
	recorder metrics.Recorder
}

func (c timedConverter) Convert(ctx context.Context, src []byte) (string, error) {
	t0 := time.Now()
	out, err := c.Converter.Convert(ctx, src)
	c.recorder.ObserveConversion(c.Name(), time.Since(t0), err == nil)
	return out, err
}
