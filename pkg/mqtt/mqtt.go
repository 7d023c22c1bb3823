// Package mqtt announces processed warnings on an MQTT broker so external
// tooling (dashboards, audit archives) can follow the moderation feed.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// WarningEvent is the wire payload published for each processed warning.
// Only outcome data is included; descriptions may hold sensitive detail and
// stay out of the feed.
type WarningEvent struct {
	ID        int64     `json:"id"`
	GuildID   string    `json:"guildId"`
	UserID    string    `json:"userId"`
	Penalty   string    `json:"penalty"`
	Notified  string    `json:"notified"`
	Penalised string    `json:"penalised"`
	Silent    bool      `json:"silent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher publishes moderation events to the broker
type Publisher struct {
	client   mqtt.Client
	clientID string
}

var (
	publisher *Publisher
	once      sync.Once
)

// Init initializes the global publisher
func Init(host, port, username, password, clientID string) *Publisher {
	once.Do(func() {
		publisher = NewPublisher(host, port, username, password, clientID)
	})
	return publisher
}

// Get returns the global publisher, nil if Init was never called
func Get() *Publisher {
	return publisher
}

// NewPublisher connects to the broker. Connection failures are logged and
// retried in the background; the bot runs fine without the feed.
func NewPublisher(host, port, username, password, clientID string) *Publisher {
	p := &Publisher{clientID: clientID}

	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return p
}

// Destroy closes the broker connection
func (p *Publisher) Destroy() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (p *Publisher) IsConnected() bool {
	return p.client != nil && p.client.IsConnected()
}

// PublishWarning announces one processed warning on the guild's feed topic.
// Delivery is best effort; failures are logged and swallowed.
func (p *Publisher) PublishWarning(w *models.Warning) {
	if p == nil || p.client == nil {
		return
	}

	event := WarningEvent{
		ID:        w.ID,
		GuildID:   w.GuildID,
		UserID:    w.UserID,
		Penalty:   w.Penalty.Name,
		Notified:  string(w.Notified),
		Penalised: string(w.Penalised),
		Silent:    w.Silent,
		CreatedAt: w.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo serializar el evento de advertencia #%d: %v", w.ID, err), "MQTT")
		return
	}

	topic := fmt.Sprintf("lemonbot/warnings/%s", w.GuildID)
	token := p.client.Publish(topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		logger.Error(fmt.Sprintf("No se pudo publicar la advertencia #%d: %v", w.ID, token.Error()), "MQTT")
	}
}
