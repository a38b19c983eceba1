package rpc

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"

	"github.com/wfunc/wordrace/logger"
)

// Server serves net/rpc services on one TCP listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers every receiver in services.
func NewServer(addr string, services ...any) (*Server, error) {
	server := rpc.NewServer()
	for _, svc := range services {
		if err := server.Register(svc); err != nil {
			return nil, fmt.Errorf("register rpc service: %w", err)
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      server,
	}, nil
}

// Addr is the bound address, useful when addr had port 0.
func (s *Server) Addr() string {
	return s.address
}

// Start accepts connections until Stop.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}
