package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/traj"
)

var upgrader = websocket.Upgrader{}

// simService runs a fake simulation endpoint that answers every simulate
// request with handle.
func simService(t *testing.T, handle func(SimulateRequest) Envelope) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if env.Type != MsgSimulate {
				continue
			}
			var req SimulateRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				return
			}
			if err := conn.WriteJSON(handle(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func envelope(msgType string, data interface{}) Envelope {
	raw, _ := json.Marshal(data)
	return Envelope{Type: msgType, Data: raw}
}

func TestClientSimulateDiscrete(t *testing.T) {
	srv := simService(t, func(req SimulateRequest) Envelope {
		// Echo a trajectory of req.SPT+1 frames starting at the seed.
		frames := make([]int, req.SPT+1)
		for i := range frames {
			frames[i] = req.Seed.State
		}
		return envelope(MsgTrajectory, TrajectoryData{Kind: traj.KindDiscrete, Discrete: frames})
	})

	c, err := Dial(wsURL(srv), traj.KindDiscrete)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if c.Kind() != traj.KindDiscrete {
		t.Fatalf("Kind = %v", c.Kind())
	}

	res, err := c.Simulate(context.Background(), sim.Seed{State: 3}, 10)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Frames() != 11 {
		t.Fatalf("expected 11 frames, got %d", res.Frames())
	}
	if res.Discrete[0] != 3 {
		t.Fatalf("trajectory starts at %d, want 3", res.Discrete[0])
	}
}

func TestClientSimulateVector(t *testing.T) {
	srv := simService(t, func(req SimulateRequest) Envelope {
		return envelope(MsgTrajectory, TrajectoryData{
			Kind:   traj.KindVector,
			Vector: [][]float64{req.Seed.Point, {1, 1}},
		})
	})

	c, err := Dial(wsURL(srv), traj.KindVector)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	res, err := c.Simulate(context.Background(), sim.Seed{Point: []float64{0.5, -0.5}}, 1)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Kind != traj.KindVector || len(res.Vector) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Vector[0][0] != 0.5 {
		t.Fatalf("seed point not echoed: %v", res.Vector[0])
	}
}

func TestClientRemoteError(t *testing.T) {
	srv := simService(t, func(req SimulateRequest) Envelope {
		return envelope(MsgError, ErrorData{Message: "engine crashed"})
	})

	c, err := Dial(wsURL(srv), traj.KindDiscrete)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	_, err = c.Simulate(context.Background(), sim.Seed{State: 0}, 5)
	if err == nil {
		t.Fatal("expected error from remote failure")
	}
	if !strings.Contains(err.Error(), "engine crashed") {
		t.Fatalf("error does not carry remote message: %v", err)
	}
}

func TestClientUnexpectedReply(t *testing.T) {
	srv := simService(t, func(req SimulateRequest) Envelope {
		return Envelope{Type: "pong"}
	})

	c, err := Dial(wsURL(srv), traj.KindDiscrete)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Simulate(context.Background(), sim.Seed{}, 5); err == nil {
		t.Fatal("expected error for unexpected reply type")
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial("ws://127.0.0.1:1/simulate", traj.KindDiscrete); err == nil {
		t.Fatal("expected dial error")
	}
}
