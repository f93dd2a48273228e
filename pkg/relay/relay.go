// Package relay implements a topic-based broadcast channel over JSON-RPC 2.0.
//
// Clients connect over TCP and talk JSON-RPC with VSCode-style framing
// (Content-Length headers). A client calls "subscribe" with a topic and sends
// "publish" notifications; the server forwards each published Message to
// every subscriber of the topic, including the publisher, as a "message"
// notification. Clients drop messages carrying their own origin id.
package relay

import (
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"
	"src.devlab.sh/pkg/logutil"
)

var logger = logutil.GetLogger("relay")

// DefaultTopic is the topic calculator sessions share unless configured
// otherwise.
const DefaultTopic = "dev-lab"

// Method names.
const (
	MethodSubscribe   = "subscribe"
	MethodUnsubscribe = "unsubscribe"
	MethodPublish     = "publish"
	MethodMessage     = "message"
)

// Message is what gets broadcast.
type Message struct {
	// Identifies the client that published the message.
	OriginID string `json:"originId"`
	// Kind of the action that produced State.
	Action string `json:"action"`
	// Snapshot of the publisher's state after the action.
	State json.RawMessage `json:"state"`
}

// TopicParams are the parameters of subscribe and unsubscribe.
type TopicParams struct {
	Topic string `json:"topic"`
}

// PublishParams are the parameters of publish.
type PublishParams struct {
	Topic   string  `json:"topic"`
	Message Message `json:"message"`
}

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

func decodeParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil || json.Unmarshal(*req.Params, v) != nil {
		return errInvalidParams
	}
	return nil
}
