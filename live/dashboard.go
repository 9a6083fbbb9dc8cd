// Package live serves a real-time view of a running simulation over
// HTTP and websocket: a dashboard page, a push channel of per-round
// state, and a polling metrics endpoint.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"highwaysim/roadsim"
)

// DashboardUpdate is the JSON payload pushed to the browser once per
// round.
type DashboardUpdate struct {
	Round            uint64       `json:"round"`
	Cars             uint64       `json:"cars"`
	AverageSpeedKmh  float64      `json:"average_speed_kilometers_per_hour"`
	TrafficLightsRed bool         `json:"traffic_lights_red"`
	Lanes            [][]CellView `json:"lanes"`
}

// CellView is a minimal per-cell rendering of Road state for the browser.
type CellView struct {
	Blocked bool  `json:"blocked"`
	Car     bool  `json:"car"`
	Speed   uint8 `json:"speed,omitempty"`
}

// Dashboard is a snapshot.SnapshotSink that serves a live-updating view
// of the simulation. It is intentionally a single-client prototype: one
// websocket connection drains the shared updates channel.
type Dashboard struct {
	router  *mux.Router
	server  *http.Server
	updates chan DashboardUpdate
	metrics *metricsCache
}

// NewDashboard constructs a Dashboard that will listen on addr once
// Serve is called.
func NewDashboard(addr string) *Dashboard {
	d := &Dashboard{
		updates: make(chan DashboardUpdate, 1),
		metrics: newMetricsCache(),
	}
	d.router = mux.NewRouter()
	d.router.HandleFunc("/", d.serveIndex).Methods(http.MethodGet)
	d.router.HandleFunc("/ws", d.serveWebsocket)
	d.router.HandleFunc("/metrics", d.serveMetrics).Methods(http.MethodGet)
	d.server = &http.Server{Addr: addr, Handler: d.router}
	return d
}

// Serve blocks until ctx is cancelled or the HTTP server fails.
func (d *Dashboard) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- d.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return d.server.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("live: serve: %w", err)
		}
		return nil
	}
}

// AddSnapshot implements snapshot.SnapshotSink.
func (d *Dashboard) AddSnapshot(road *roadsim.Road) error {
	d.metrics.set(road.AverageSpeed())

	update := DashboardUpdate{
		Round:            road.RoundIndex(),
		Cars:             road.NCars(),
		AverageSpeedKmh:  d.metrics.get() * 7.5 * 3.6,
		TrafficLightsRed: road.TrafficLightsRed(),
		Lanes:            viewLanes(road),
	}

	select {
	case d.updates <- update:
	default:
		// Drop the stale update in favor of the fresh one; the
		// dashboard only ever needs the latest state.
		select {
		case <-d.updates:
		default:
		}
		d.updates <- update
	}
	return nil
}

// Close shuts the HTTP server down.
func (d *Dashboard) Close() error {
	return d.server.Close()
}

func viewLanes(road *roadsim.Road) [][]CellView {
	lanes := make([][]CellView, road.Lanes())
	for l := range lanes {
		row := make([]CellView, road.Length())
		for c := range row {
			cell := road.Cell(l, c)
			cv := CellView{Blocked: cell.Blocked()}
			if car := cell.Car(); car != nil {
				cv.Car = true
				cv.Speed = car.Speed()
			}
			row[c] = cv
		}
		lanes[l] = row
	}
	return lanes
}

func (d *Dashboard) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(indexHTML))
}

func (d *Dashboard) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := NewClient(d.updates, w, r)
	if err != nil {
		return
	}
	_ = cli.Sync()
}

func (d *Dashboard) serveMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]float64{
		"average_speed_kilometers_per_hour": d.metrics.get() * 7.5 * 3.6,
	})
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>highwaysim</title></head>
<body>
<pre id="grid"></pre>
<p id="stats"></p>
<script>
const grid = document.getElementById("grid");
const stats = document.getElementById("stats");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = function(evt) {
  const update = JSON.parse(evt.data);
  let rows = [];
  for (const lane of update.lanes) {
    let row = "";
    for (const cell of lane) {
      row += cell.blocked ? "#" : (cell.car ? "o" : " ");
    }
    rows.push(row);
  }
  grid.textContent = rows.join("\n");
  stats.textContent = "round " + update.round + "  cars " + update.cars +
    "  avg speed " + update.average_speed_kilometers_per_hour.toFixed(1) + " km/h";
};
</script>
</body>
</html>
`
