//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../../internal/mocks/mock_hub.go -package=mocks
package ws

import (
	"context"
	"encoding/json"
)

// Publisher delivers a payload to every live session currently subscribed to
// destination. Delivery is best-effort: sessions that are not subscribed at
// publish time never see the payload.
type Publisher interface {
	Publish(ctx context.Context, destination string, payload []byte) error
}

type IHub interface {
	Publisher
	Run(ctx context.Context)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	Subscribe(client *Client, destination string)
	Unsubscribe(client *Client, destination string)
	SendToClient(client *Client, frame []byte) bool
	GetClientCount() int
}

// Frame is what a subscribed session receives for every publish.
type Frame struct {
	Destination string          `json:"destination"`
	Payload     json.RawMessage `json:"payload"`
}
