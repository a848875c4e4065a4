package profile

import (
	"google.golang.org/grpc"

	"github.com/oggyb/crush-radar/internal/app"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// Registrar ties the Profile service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Profile service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterProfileServiceServer(s, NewProfileService(r.appCtx))
}
