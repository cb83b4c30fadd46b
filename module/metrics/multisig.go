package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceMultisig = "multisig"

// MultisigCollector tracks the progress of witness collection and broadcast
// outcomes across all pending actions.
type MultisigCollector struct {
	actionsRegistered *prometheus.CounterVec
	witnessesAccepted prometheus.Counter
	witnessesRejected *prometheus.CounterVec
	quorumsReached    prometheus.Counter
	broadcasts        *prometheus.CounterVec
}

func NewMultisigCollector() *MultisigCollector {

	mc := &MultisigCollector{

		actionsRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMultisig,
			Name:      "actions_registered_total",
			Help:      "count of pending actions registered, by action kind",
		}, []string{"kind"}),

		witnessesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceMultisig,
			Name:      "witnesses_accepted_total",
			Help:      "count of witnesses persisted",
		}),

		witnessesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMultisig,
			Name:      "witnesses_rejected_total",
			Help:      "count of refused witness submissions, by reason",
		}, []string{"reason"}),

		quorumsReached: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceMultisig,
			Name:      "quorums_reached_total",
			Help:      "count of actions whose witness count reached the threshold",
		}),

		broadcasts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMultisig,
			Name:      "broadcasts_total",
			Help:      "count of broadcast attempts, by result",
		}, []string{"result"}),
	}

	return mc
}

func (mc *MultisigCollector) ActionRegistered(kind string) {
	mc.actionsRegistered.With(prometheus.Labels{"kind": kind}).Inc()
}

func (mc *MultisigCollector) WitnessAccepted() {
	mc.witnessesAccepted.Inc()
}

func (mc *MultisigCollector) WitnessRejected(reason string) {
	mc.witnessesRejected.With(prometheus.Labels{"reason": reason}).Inc()
}

func (mc *MultisigCollector) QuorumReached() {
	mc.quorumsReached.Inc()
}

func (mc *MultisigCollector) BroadcastFinished(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	mc.broadcasts.With(prometheus.Labels{"result": result}).Inc()
}
