package server

import "google.golang.org/grpc"

// Registrar attaches one service to a server. Services register against
// grpc.ServiceRegistrar so they can be mounted on any server implementation.
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}
