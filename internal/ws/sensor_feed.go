package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wattline/internal/models"
	"wattline/internal/service"
)

const (
	readLimit    = 64 * 1024
	readDeadline = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Ingestor persists readings delivered over the socket.
type Ingestor interface {
	Ingest(ctx context.Context, input service.MeasurementInput) (*models.Sample, error)
}

type ack struct {
	Saved bool   `json:"saved"`
	Error string `json:"error,omitempty"`
}

// SensorFeed upgrades sensor connections and streams their readings into the
// ingestion pipeline. Each message is one measurement; the sensor receives a
// saved/failed acknowledgement per message.
type SensorFeed struct {
	ingestor Ingestor
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewSensorFeed returns feed handler.
func NewSensorFeed(ingestor Ingestor, logger *zap.Logger) *SensorFeed {
	return &SensorFeed{
		ingestor: ingestor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws/sensors.
func (f *SensorFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("failed to upgrade sensor connection", zap.Error(err))
		return
	}

	f.logger.Info("sensor connected", zap.String("remote", conn.RemoteAddr().String()))
	f.readPump(context.Background(), conn)
}

func (f *SensorFeed) readPump(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
		f.logger.Info("sensor disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var input service.MeasurementInput
		if err := json.Unmarshal(message, &input); err != nil {
			f.send(conn, ack{Saved: false, Error: "invalid json"})
			continue
		}

		if _, err := f.ingestor.Ingest(ctx, input); err != nil {
			f.logger.Warn("failed to ingest socket measurement", zap.String("sensor", input.SensorRef), zap.Error(err))
			f.send(conn, ack{Saved: false, Error: err.Error()})
			continue
		}
		f.send(conn, ack{Saved: true})
	}
}

func (f *SensorFeed) send(conn *websocket.Conn, a ack) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(a); err != nil {
		f.logger.Warn("failed to write sensor ack", zap.Error(err))
	}
}
