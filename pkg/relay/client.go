package relay

import (
	"context"
	"encoding/json"
	"net"

	"github.com/sourcegraph/jsonrpc2"
)

// Client is a connection to a Server.
type Client struct {
	conn   *jsonrpc2.Conn
	origin string
}

// Dial connects to the Server at addr. Messages published by other clients
// on topics this client subscribes to are passed to onMessage, which is
// called from a single goroutine in delivery order. Messages whose origin id
// equals originID are dropped.
func Dial(ctx context.Context, addr, originID string, onMessage func(Message)) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(nc, originID, onMessage), nil
}

// NewClient is like Dial, but uses an existing connection.
func NewClient(nc net.Conn, originID string, onMessage func(Message)) *Client {
	handler := func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		if req.Method != MethodMessage {
			return nil, errMethodNotFound
		}
		var msg Message
		if err := decodeParams(req, &msg); err != nil {
			logger.Warnw("malformed message", "err", err)
			return nil, err
		}
		if msg.OriginID == originID {
			return nil, nil
		}
		onMessage(msg)
		return nil, nil
	}
	conn := jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(nc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(handler))
	return &Client{conn, originID}
}

// OriginID returns the id attached to messages published by this client.
func (c *Client) OriginID() string { return c.origin }

// Subscribe subscribes to topic. When it returns without error, the server
// forwards all later messages on the topic.
func (c *Client) Subscribe(ctx context.Context, topic string) error {
	return c.conn.Call(ctx, MethodSubscribe, TopicParams{topic}, nil)
}

// Unsubscribe cancels a subscription to topic.
func (c *Client) Unsubscribe(ctx context.Context, topic string) error {
	return c.conn.Call(ctx, MethodUnsubscribe, TopicParams{topic}, nil)
}

// Publish broadcasts a state snapshot produced by an action of the given
// kind. It does not wait for the server to acknowledge the message, so it can
// be called while onMessage is blocked.
func (c *Client) Publish(ctx context.Context, topic, action string, state json.RawMessage) error {
	return c.conn.Notify(ctx, MethodPublish, PublishParams{
		Topic:   topic,
		Message: Message{OriginID: c.origin, Action: action, State: state},
	})
}

// DisconnectNotify returns a channel that is closed when the connection is
// gone.
func (c *Client) DisconnectNotify() <-chan struct{} {
	return c.conn.DisconnectNotify()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
