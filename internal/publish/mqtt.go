package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

const publishTimeout = 5 * time.Second

// BoardTopic carries the full board, retained so a screen that connects late
// renders immediately.
func BoardTopic(id string) string { return fmt.Sprintf("masjid/%s/board", id) }

// StateTopic carries the screen state whenever it changes.
func StateTopic(id string) string { return fmt.Sprintf("masjid/%s/state", id) }

// CommandTopic is where operators send Commands.
func CommandTopic(id string) string { return fmt.Sprintf("masjid/%s/commands", id) }

// mqttConn is the part of mqtt.Client the publisher uses.
type mqttConn interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes boards for one mosque and relays its commands.
type MQTT struct {
	conn mqttConn
	id   string

	mu        sync.Mutex
	lastState prayer.ScreenStateInfo
	published bool
}

// DialMQTT connects to broker with a unique client id. Commands received on
// the mosque's command topic are passed to onCommand; the subscription is
// renewed on every reconnect.
func DialMQTT(broker, id string, onCommand func(Command)) (*MQTT, error) {
	m := &MQTT{id: id}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("masjid-display-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", broker).Str("mosque", id).Msg("connected to MQTT broker")
		if onCommand == nil {
			return
		}
		if err := m.subscribe(c, onCommand); err != nil {
			log.Error().Err(err).Str("topic", CommandTopic(id)).Msg("subscribing to commands")
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %v", broker, token.Error())
	}

	m.conn = client
	return m, nil
}

func newMQTT(conn mqttConn, id string) *MQTT {
	return &MQTT{conn: conn, id: id}
}

func (m *MQTT) subscribe(c mqttConn, onCommand func(Command)) error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		cmd, err := ParseCommand(msg.Payload())
		if err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic()).Msg("ignoring command")
			return
		}
		log.Info().Str("mosque", m.id).Str("command", string(cmd)).Msg("command received")
		onCommand(cmd)
	}
	return wait(context.Background(), c.Subscribe(CommandTopic(m.id), 1, handler))
}

// Publish implements board.Sink. The state topic is only written when the
// screen state or its prayer changes.
func (m *MQTT) Publish(ctx context.Context, b board.Board) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding board: %w", err)
	}
	if err := wait(ctx, m.conn.Publish(BoardTopic(m.id), 1, true, payload)); err != nil {
		return fmt.Errorf("publishing board: %w", err)
	}

	m.mu.Lock()
	changed := !m.published ||
		m.lastState.State != b.Screen.State ||
		m.lastState.CurrentPrayer != b.Screen.CurrentPrayer
	m.mu.Unlock()
	if !changed {
		return nil
	}

	state, err := json.Marshal(b.Screen)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := wait(ctx, m.conn.Publish(StateTopic(m.id), 1, true, state)); err != nil {
		return fmt.Errorf("publishing state: %w", err)
	}

	m.mu.Lock()
	m.lastState = b.Screen
	m.published = true
	m.mu.Unlock()
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.conn.Disconnect(250)
}

func wait(ctx context.Context, t mqtt.Token) error {
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", publishTimeout)
	}
}
