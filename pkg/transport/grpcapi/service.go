// Package grpcapi exposes the trigger lifecycle over the generated
// unitrigger.v1 TriggerService.
package grpcapi

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unijord/unitrigger/pkg/coordinator"
	unitriggerv1 "github.com/unijord/unitrigger/pkg/gen/go/proto/unitrigger/v1"
	"github.com/unijord/unitrigger/pkg/routing"
	"github.com/unijord/unitrigger/pkg/trigger"
)

const (
	ServiceName = "unitrigger.v1.TriggerService"
	// MetadataDatabase carries the caller's current database.
	MetadataDatabase = "x-database"
	// MetadataRequestID is echoed back in response headers.
	MetadataRequestID = "x-request-id"
)

// Coordinator is the lifecycle surface served over gRPC.
type Coordinator interface {
	SystemDatabase() string
	InstallRaw(ctx context.Context, database, name, statement string, selector, config map[string]any) (coordinator.Result, error)
	Drop(ctx context.Context, database, name string) (coordinator.Result, error)
	DropAll(ctx context.Context, database string) (coordinator.Result, error)
	Stop(ctx context.Context, database, name string) (coordinator.Result, error)
	Start(ctx context.Context, database, name string) (coordinator.Result, error)
	Show(ctx context.Context, database string) (coordinator.Result, error)
}

// TriggerService implements unitriggerv1.TriggerServiceServer on top of a
// Coordinator.
type TriggerService struct {
	unitriggerv1.UnimplementedTriggerServiceServer

	coord  Coordinator
	roles  routing.RoleProvider
	nodeID string
}

func NewTriggerService(coord Coordinator, roles routing.RoleProvider, nodeID string) *TriggerService {
	return &TriggerService{coord: coord, roles: roles, nodeID: nodeID}
}

// callerContext moves the current database from metadata into ctx. Callers
// that send none are on the system database.
func (s *TriggerService) callerContext(ctx context.Context) context.Context {
	current := s.coord.SystemDatabase()
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(MetadataDatabase); len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			current = v[0]
		}
	}
	return coordinator.WithDatabase(ctx, current)
}

func respond(op string, res coordinator.Result, err error) (*unitriggerv1.TriggersResponse, error) {
	if err != nil {
		return nil, err
	}
	out := &unitriggerv1.TriggersResponse{Triggers: make([]*unitriggerv1.Trigger, 0, len(res))}
	for _, info := range res {
		t, err := triggerToProto(info)
		if err != nil {
			return nil, trigger.Wrap(trigger.KindInternal, op, "encode trigger "+info.Name, err)
		}
		out.Triggers = append(out.Triggers, t)
	}
	return out, nil
}

// structMap keeps an absent Struct distinct from an empty one.
func structMap(s *structpb.Struct) map[string]any {
	if s == nil {
		return nil
	}
	return s.AsMap()
}

func (s *TriggerService) Install(ctx context.Context, req *unitriggerv1.InstallRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.InstallRaw(s.callerContext(ctx), req.GetDatabase(), req.GetName(), req.GetStatement(),
		structMap(req.GetSelector()), structMap(req.GetConfig()))
	return respond("install", res, err)
}

func (s *TriggerService) Drop(ctx context.Context, req *unitriggerv1.NameRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.Drop(s.callerContext(ctx), req.GetDatabase(), req.GetName())
	return respond("drop", res, err)
}

func (s *TriggerService) DropAll(ctx context.Context, req *unitriggerv1.DatabaseRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.DropAll(s.callerContext(ctx), req.GetDatabase())
	return respond("dropAll", res, err)
}

func (s *TriggerService) Stop(ctx context.Context, req *unitriggerv1.NameRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.Stop(s.callerContext(ctx), req.GetDatabase(), req.GetName())
	return respond("stop", res, err)
}

func (s *TriggerService) Start(ctx context.Context, req *unitriggerv1.NameRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.Start(s.callerContext(ctx), req.GetDatabase(), req.GetName())
	return respond("start", res, err)
}

func (s *TriggerService) Show(ctx context.Context, req *unitriggerv1.DatabaseRequest) (*unitriggerv1.TriggersResponse, error) {
	res, err := s.coord.Show(s.callerContext(ctx), req.GetDatabase())
	return respond("show", res, err)
}

// Leader reports whether this node accepts mutations and where the leader is.
func (s *TriggerService) Leader(_ context.Context, _ *unitriggerv1.LeaderRequest) (*unitriggerv1.LeaderResponse, error) {
	system := s.coord.SystemDatabase()
	return &unitriggerv1.LeaderResponse{
		NodeId:     s.nodeID,
		IsLeader:   s.roles.IsWritableLeader(system),
		LeaderAddr: s.roles.LeaderAddr(system),
	}, nil
}

var _ unitriggerv1.TriggerServiceServer = (*TriggerService)(nil)
