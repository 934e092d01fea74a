package broker

import (
	"encoding/json"

	"github.com/veritag/veriqr-services/internal/comm"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const ScanEventsTopic = "scan.events"

// Publisher pushes scan events onto NATS for analytics consumers. Publishing
// is best-effort: a nil Publisher or a broker error never affects the
// verification path that produced the event.
type Publisher struct {
	Conn *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{Conn: nc}
}

func (p *Publisher) PublishScan(event comm.ScanEvent) {
	if p == nil || p.Conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Error encoding scan event %s", err)
		return
	}

	if err := p.Conn.Publish(ScanEventsTopic, data); err != nil {
		log.Warnf("unable to publish scan event for %s: %s", event.ProductId, err)
	}
}
