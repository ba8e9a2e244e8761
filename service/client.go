package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"qproof.io/qpo/model"
)

// Client is a typed client for the pipeline gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client PipelineClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewPipelineClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Run(req model.RunRequest) (model.RunResponse, error) {
	var resp model.RunResponse
	body, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Run(ctx, wrapperspb.Bytes(body))
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return resp, fmt.Errorf("malformed run response: %w", err)
	}
	return resp, nil
}

func (c *Client) SimulateAttack(attack string) (model.AttackSimulation, error) {
	var sim model.AttackSimulation

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.SimulateAttack(ctx, wrapperspb.String(attack))
	if err != nil {
		return sim, err
	}
	if err := json.Unmarshal(reply.GetValue(), &sim); err != nil {
		return sim, fmt.Errorf("malformed simulation response: %w", err)
	}
	return sim, nil
}

func (c *Client) Status() (model.BackendStatus, error) {
	var st model.BackendStatus

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Status(ctx, wrapperspb.String(""))
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(reply.GetValue(), &st); err != nil {
		return st, fmt.Errorf("malformed status response: %w", err)
	}
	return st, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
