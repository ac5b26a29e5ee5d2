// Package remote implements the simulator contract over a WebSocket
// connection to an out-of-process simulation service.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region constants
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Default time allowed for the peer to produce a trajectory when the
	// caller's context carries no deadline.
	defaultSimWait = 5 * time.Minute
)

// Message types for the simulate protocol.
const (
	MsgSimulate   = "simulate"
	MsgTrajectory = "trajectory"
	MsgError      = "error"
)

// #endregion constants

// #region messages
// Envelope is the standard WebSocket message wrapper.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// SimulateRequest asks the service for one trajectory.
type SimulateRequest struct {
	Seed sim.Seed `json:"seed"`
	SPT  int      `json:"spt"`
}

// TrajectoryData is the service's successful reply.
type TrajectoryData struct {
	Kind     traj.Kind   `json:"kind"`
	Discrete []int       `json:"discrete,omitempty"`
	Vector   [][]float64 `json:"vector,omitempty"`
}

// ErrorData is the service's failure reply.
type ErrorData struct {
	Message string `json:"message"`
}

// #endregion messages

// #region client
// Client drives a remote simulator over one WebSocket connection. The
// protocol is strictly request/reply, so calls are serialized; run several
// clients for parallel remote simulation.
type Client struct {
	kind traj.Kind

	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to a simulation service at a ws:// or wss:// URL. kind
// declares which frame representation the service produces.
func Dial(url string, kind traj.Kind) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{kind: kind, conn: conn}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Kind reports the frame representation the remote service produces.
func (c *Client) Kind() traj.Kind { return c.kind }

// #endregion client

// #region simulate
// Simulate sends one simulate request and waits for the reply.
func (c *Client) Simulate(ctx context.Context, seed sim.Seed, spt int) (sim.Result, error) {
	data, err := json.Marshal(SimulateRequest{Seed: seed, SPT: spt})
	if err != nil {
		return sim.Result{}, &sim.SimulationError{Seed: seed, Err: err}
	}
	req := Envelope{
		Type:      MsgSimulate,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSimWait)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(req); err != nil {
		return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("write request: %w", err)}
	}

	c.conn.SetReadDeadline(deadline)
	var reply Envelope
	if err := c.conn.ReadJSON(&reply); err != nil {
		return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("read reply: %w", err)}
	}

	switch reply.Type {
	case MsgTrajectory:
		var td TrajectoryData
		if err := json.Unmarshal(reply.Data, &td); err != nil {
			return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("decode trajectory: %w", err)}
		}
		return td.toResult(), nil
	case MsgError:
		var ed ErrorData
		if err := json.Unmarshal(reply.Data, &ed); err != nil {
			return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("decode error reply: %w", err)}
		}
		return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("remote: %s", ed.Message)}
	default:
		return sim.Result{}, &sim.SimulationError{Seed: seed, Err: fmt.Errorf("unexpected reply type %q", reply.Type)}
	}
}

func (td TrajectoryData) toResult() sim.Result {
	if td.Kind == traj.KindVector {
		return sim.Result{Kind: traj.KindVector, Vector: td.Vector}
	}
	return sim.Result{Kind: traj.KindDiscrete, Discrete: td.Discrete}
}

// #endregion simulate
