package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher publica con NATS core (at-most-once).
type NATSPublisher struct {
	nc *nats.Conn
}

// ConnectNATS abre la conexión con reconexión automática.
func ConnectNATS(url string, log zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("cmms-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info().Str("url", url).Msg("nats conectado")
	return &NATSPublisher{nc: nc}, nil
}

// Publish envía data al asunto.
func (p *NATSPublisher) Publish(_ context.Context, subject string, data []byte) error {
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Conn conexión subyacente (suscriptores en pruebas).
func (p *NATSPublisher) Conn() *nats.Conn { return p.nc }

// Close vacía el buffer y cierra la conexión.
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
