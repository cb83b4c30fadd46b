package metrics

// NoopCollector is used in tests and wherever metrics reporting is not
// wanted.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (nc *NoopCollector) ActionRegistered(string) {}
func (nc *NoopCollector) WitnessAccepted()        {}
func (nc *NoopCollector) WitnessRejected(string)  {}
func (nc *NoopCollector) QuorumReached()          {}
func (nc *NoopCollector) BroadcastFinished(bool)  {}
