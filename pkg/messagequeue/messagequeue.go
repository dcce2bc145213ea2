package messagequeue

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(queueName string, body []byte) error
	Consume(queueName string, handler func(body []byte)) error
	Close() error
}

// noopQueue satisfies MessageQueue when no broker is configured. Publishes
// are discarded and Consume returns immediately.
type noopQueue struct{}

// NewNoopQueue returns a MessageQueue that discards everything.
func NewNoopQueue() MessageQueue {
	return noopQueue{}
}

func (noopQueue) Publish(queueName string, body []byte) error             { return nil }
func (noopQueue) Consume(queueName string, handler func(body []byte)) error { return nil }
func (noopQueue) Close() error                                            { return nil }
