// Package monitoring turns a simulation into a small web server so that an
// external tool can observe the clock, the run state, and the queues, and
// can start or stop the run.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/syifan/goseth"

	"github.com/desimlab/desim/sim"
)

// Monitor exposes a simulation over HTTP for external observation and
// control.
type Monitor struct {
	sim        *sim.Simulation
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulation registers the simulation to be monitored.
func (m *Monitor) RegisterSimulation(s *sim.Simulation) {
	m.sim = s
}

// StartServer starts the monitor as a web server. It returns the address
// the server listens on.
func (m *Monitor) StartServer() string {
	r := m.router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	addr := fmt.Sprintf("localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with http://%s\n", addr)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return addr
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/start", m.start)
	r.HandleFunc("/api/stop", m.stop)
	r.HandleFunc("/api/queues", m.listQueues)
	r.HandleFunc("/api/queue/{name}", m.queueDetails)
	r.HandleFunc("/api/queue/{name}/raw", m.queueRaw)

	return r
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.sim.Now())
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"state\":%q}", m.sim.State().String())
}

func (m *Monitor) start(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.sim.Start()
		dieOnErr(err)
	}()
}

func (m *Monitor) stop(w http.ResponseWriter, _ *http.Request) {
	m.sim.Stop()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) listQueues(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, q := range m.sim.Queues() {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", q.Name())
	}
	fmt.Fprint(w, "]")
}

type queueStatus struct {
	Name         string   `json:"name"`
	Capacity     int      `json:"capacity"`
	Length       int      `json:"length"`
	Waiting      int      `json:"waiting"`
	TotalCount   int      `json:"total_count"`
	Utilization  float64  `json:"utilization"`
	AverageDwell float64  `json:"average_dwell"`
	MaxDwell     float64  `json:"max_dwell"`
	AverageLen   float64  `json:"average_length"`
	MaxLen       float64  `json:"max_length"`
	Occupants    []string `json:"occupants"`
}

func (m *Monitor) queueDetails(w http.ResponseWriter, r *http.Request) {
	q := m.findQueueOr404(w, mux.Vars(r)["name"])
	if q == nil {
		return
	}

	occupants := q.Occupants()
	status := queueStatus{
		Name:         q.Name(),
		Capacity:     q.Capacity(),
		Length:       q.Len(),
		Waiting:      q.WaitingCount(),
		TotalCount:   q.TotalCount(),
		Utilization:  q.Utilization(),
		AverageDwell: float64(q.AverageDwell()),
		MaxDwell:     float64(q.MaxDwell()),
		AverageLen:   q.AverageLength(),
		MaxLen:       q.MaxLength(),
		Occupants:    make([]string, len(occupants)),
	}
	for i, p := range occupants {
		status.Occupants[i] = p.ID()
	}

	err := json.NewEncoder(w).Encode(status)
	dieOnErr(err)
}

func (m *Monitor) queueRaw(w http.ResponseWriter, r *http.Request) {
	q := m.findQueueOr404(w, mux.Vars(r)["name"])
	if q == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(q)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findQueueOr404(
	w http.ResponseWriter,
	name string,
) *sim.Queue {
	q := m.sim.QueueByName(name)
	if q == nil {
		w.WriteHeader(http.StatusNotFound)
	}

	return q
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
