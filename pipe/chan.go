package pipe

// Chan is a sink which exposes messages on a Go channel. Reader must
// keep up with the pipe, otherwise processing loop blocks. Channel is
// closed when pipe is flushed.
type Chan struct {
	c chan Message
}

// NewChan returns sink with channel of provided capacity.
func NewChan(size int) *Chan {
	return &Chan{c: make(chan Message, size)}
}

// Messages returns channel of emitted messages.
func (c *Chan) Messages() <-chan Message {
	return c.c
}

// Sink implements Sink.
func (c *Chan) Sink(pipeID string) (func(Message) error, error) {
	return func(m Message) error {
		c.c <- m
		return nil
	}, nil
}

// Flush closes the channel.
func (c *Chan) Flush(pipeID string) error {
	close(c.c)
	return nil
}
