package grpcapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	unitriggerv1 "github.com/unijord/unitrigger/pkg/gen/go/proto/unitrigger/v1"
	"github.com/unijord/unitrigger/pkg/trigger"
)

// DefaultDialOptions are the options Dial uses before any caller options.
func DefaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// LeaderInfo is the client view of a Leader call.
type LeaderInfo struct {
	NodeID     string `json:"nodeId"`
	IsLeader   bool   `json:"isLeader"`
	LeaderAddr string `json:"leaderAddr,omitempty"`
}

// Client calls TriggerService. Failures come back as *trigger.Error.
type Client struct {
	rpc      unitriggerv1.TriggerServiceClient
	closer   func() error
	database string
}

// Dial connects to addr. The connection is established lazily.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(addr, append(DefaultDialOptions(), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c := NewClient(conn)
	c.closer = conn.Close
	return c, nil
}

// NewClient wraps an existing connection; the caller keeps ownership.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: unitriggerv1.NewTriggerServiceClient(cc), database: trigger.SystemDatabase}
}

// WithDatabase returns a client whose calls run with database as the
// caller's current database.
func (c *Client) WithDatabase(database string) *Client {
	cp := *c
	cp.database = database
	cp.closer = nil
	return &cp
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, MetadataDatabase, c.database)
}

func callError(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	te := trigger.FromStatus(st)
	if te.Op == "" {
		te.Op = method
	}
	return te
}

func triggers(method string, resp *unitriggerv1.TriggersResponse, err error) ([]trigger.Info, error) {
	if err != nil {
		return nil, callError(method, err)
	}
	out := make([]trigger.Info, 0, len(resp.GetTriggers()))
	for _, t := range resp.GetTriggers() {
		info, err := triggerFromProto(t)
		if err != nil {
			return nil, trigger.Wrap(trigger.KindInternal, method, "decode response", err)
		}
		out = append(out, info)
	}
	return out, nil
}

func (c *Client) Install(ctx context.Context, database, name, statement string, selector, config map[string]any) ([]trigger.Info, error) {
	sel, err := optionalStruct(selector)
	if err != nil {
		return nil, trigger.Wrap(trigger.KindInvalidArgument, "install", "invalid selector", err)
	}
	cfg, err := optionalStruct(config)
	if err != nil {
		return nil, trigger.Wrap(trigger.KindInvalidArgument, "install", "invalid config", err)
	}
	resp, err := c.rpc.Install(c.outgoing(ctx), &unitriggerv1.InstallRequest{
		Database:  database,
		Name:      name,
		Statement: statement,
		Selector:  sel,
		Config:    cfg,
	})
	return triggers("Install", resp, err)
}

func (c *Client) Drop(ctx context.Context, database, name string) ([]trigger.Info, error) {
	resp, err := c.rpc.Drop(c.outgoing(ctx), &unitriggerv1.NameRequest{Database: database, Name: name})
	return triggers("Drop", resp, err)
}

func (c *Client) DropAll(ctx context.Context, database string) ([]trigger.Info, error) {
	resp, err := c.rpc.DropAll(c.outgoing(ctx), &unitriggerv1.DatabaseRequest{Database: database})
	return triggers("DropAll", resp, err)
}

func (c *Client) Stop(ctx context.Context, database, name string) ([]trigger.Info, error) {
	resp, err := c.rpc.Stop(c.outgoing(ctx), &unitriggerv1.NameRequest{Database: database, Name: name})
	return triggers("Stop", resp, err)
}

func (c *Client) Start(ctx context.Context, database, name string) ([]trigger.Info, error) {
	resp, err := c.rpc.Start(c.outgoing(ctx), &unitriggerv1.NameRequest{Database: database, Name: name})
	return triggers("Start", resp, err)
}

func (c *Client) Show(ctx context.Context, database string) ([]trigger.Info, error) {
	resp, err := c.rpc.Show(c.outgoing(ctx), &unitriggerv1.DatabaseRequest{Database: database})
	return triggers("Show", resp, err)
}

func (c *Client) Leader(ctx context.Context) (*LeaderInfo, error) {
	resp, err := c.rpc.Leader(c.outgoing(ctx), &unitriggerv1.LeaderRequest{})
	if err != nil {
		return nil, callError("Leader", err)
	}
	return &LeaderInfo{
		NodeID:     resp.GetNodeId(),
		IsLeader:   resp.GetIsLeader(),
		LeaderAddr: resp.GetLeaderAddr(),
	}, nil
}
