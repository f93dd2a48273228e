package relay

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"golang.org/x/net/netutil"
)

// MaxConns is the maximum number of connections a Server serves at once.
// Further connections wait in the accept queue.
const MaxConns = 256

// Server fans out published messages to subscribers.
type Server struct {
	mu     sync.Mutex
	conns  map[*jsonrpc2.Conn]struct{}
	topics map[string]map[*jsonrpc2.Conn]struct{}
}

// NewServer returns a new Server.
func NewServer() *Server {
	return &Server{
		conns:  make(map[*jsonrpc2.Conn]struct{}),
		topics: make(map[string]map[*jsonrpc2.Conn]struct{}),
	}
}

// Serve accepts connections on ln until ctx is canceled or ln fails. When it
// returns, ln and all connections it accepted are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, MaxConns)
	logger.Infow("serving", "addr", ln.Addr().String())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
		s.closeAll()
	}()
	defer wg.Wait()
	defer close(stop)

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Errorw("failed to accept connection", "err", err)
			return err
		}
		conn := jsonrpc2.NewConn(ctx,
			jsonrpc2.NewBufferedStream(nc, jsonrpc2.VSCodeObjectCodec{}),
			jsonrpc2.HandlerWithError(s.handle))
		if !s.addConn(conn) {
			conn.Close()
			return nil
		}
		logger.Debugw("accepted connection", "remote", nc.RemoteAddr().String())
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-conn.DisconnectNotify()
			s.removeConn(conn)
			logger.Debugw("connection closed", "remote", nc.RemoteAddr().String())
		}()
	}
}

// Subscribers returns the number of connections subscribed to topic.
func (s *Server) Subscribers(topic string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics[topic])
}

func (s *Server) addConn(conn *jsonrpc2.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) removeConn(conn *jsonrpc2.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	for topic, subs := range s.topics {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(s.topics, topic)
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for conn := range conns {
		conn.Close()
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case MethodSubscribe:
		var p TopicParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.subscribe(conn, p.Topic)
		return true, nil
	case MethodUnsubscribe:
		var p TopicParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.unsubscribe(conn, p.Topic)
		return true, nil
	case MethodPublish:
		var p PublishParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.publish(ctx, p)
		return true, nil
	}
	return nil, errMethodNotFound
}

func (s *Server) subscribe(conn *jsonrpc2.Conn, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.topics[topic]
	if !ok {
		subs = make(map[*jsonrpc2.Conn]struct{})
		s.topics[topic] = subs
	}
	subs[conn] = struct{}{}
}

func (s *Server) unsubscribe(conn *jsonrpc2.Conn, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subs, ok := s.topics[topic]; ok {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(s.topics, topic)
		}
	}
}

func (s *Server) publish(ctx context.Context, p PublishParams) {
	s.mu.Lock()
	subs := make([]*jsonrpc2.Conn, 0, len(s.topics[p.Topic]))
	for conn := range s.topics[p.Topic] {
		subs = append(subs, conn)
	}
	s.mu.Unlock()

	for _, conn := range subs {
		if err := conn.Notify(ctx, MethodMessage, p.Message); err != nil {
			logger.Warnw("failed to forward message", "topic", p.Topic, "err", err)
		}
	}
}
