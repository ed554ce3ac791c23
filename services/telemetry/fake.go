package telemetry

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	Topics   []string
	Payloads [][]byte
	Retained []bool

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Closed tracks whether Close was called.
	Closed bool
}

func NewFakePublisher() *FakePublisher { return &FakePublisher{} }

func (f *FakePublisher) Publish(topic string, payload []byte, retained bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Topics = append(f.Topics, topic)
	f.Payloads = append(f.Payloads, payload)
	f.Retained = append(f.Retained, retained)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
