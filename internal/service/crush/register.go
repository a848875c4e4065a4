package crush

import (
	"google.golang.org/grpc"

	"github.com/oggyb/crush-radar/internal/app"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// Registrar ties the Crush service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Crush service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Crush service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterCrushServiceServer(s, NewCrushService(r.appCtx))
}
