package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"

	"github.com/coredb/recordmgr/recordmgr"
)

// Server is the HTTP/websocket/cron glue in front of a single open Table.
// It never touches page or slot bytes directly - every handler goes
// through the recordmgr package's public operations. recordmgr.Table is not
// safe for concurrent use on its own, so Server keeps one mutex per table
// and holds it around every call into recordmgr from its HTTP, websocket
// and cron goroutines.
type Server struct {
	table  *recordmgr.Table
	router *chi.Mux
	cron   *cron.Cron

	tableLocksMu sync.Mutex
	tableLocks   map[*recordmgr.Table]*sync.Mutex
}

// lockFor returns the mutex guarding concurrent access to tbl, creating one
// on first use.
func (s *Server) lockFor(tbl *recordmgr.Table) *sync.Mutex {
	s.tableLocksMu.Lock()
	defer s.tableLocksMu.Unlock()
	if l, ok := s.tableLocks[tbl]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.tableLocks[tbl] = l
	return l
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer builds a Server around an already-open table and starts its
// cron heartbeat.
func NewServer(tbl *recordmgr.Table) *Server {
	s := &Server{
		table:      tbl,
		router:     chi.NewRouter(),
		cron:       cron.New(),
		tableLocks: make(map[*recordmgr.Table]*sync.Mutex),
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.setupRoutes()

	if _, err := s.cron.AddFunc("@every 30s", s.logHeartbeat); err == nil {
		s.cron.Start()
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/tables/{name}/stats", s.handleStats)
	s.router.Get("/tables/{name}/scan", s.handleScan)
}

// ListenAndServe starts serving on addr. It blocks until the server errors.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Close stops the cron heartbeat. It does not close the underlying table.
func (s *Server) Close() {
	s.cron.Stop()
}

func (s *Server) logHeartbeat() {
	lock := s.lockFor(s.table)
	lock.Lock()
	defer lock.Unlock()

	st := s.table.BufferStats()
	fmt.Printf("rmserver: heartbeat table=%s tuples=%d bufferHits=%d bufferMisses=%d evictions=%d\n",
		s.table.Name(), recordmgr.GetNumTuples(s.table), st.Hits, st.Misses, st.Evictions)
}

type statsResponse struct {
	Table           string `json:"table"`
	NumTuples       int32  `json:"numTuples"`
	BufferHits      int    `json:"bufferHits"`
	BufferMisses    int    `json:"bufferMisses"`
	BufferEvictions int    `json:"bufferEvictions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(s.table.Name()) {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}

	lock := s.lockFor(s.table)
	lock.Lock()
	defer lock.Unlock()

	st := s.table.BufferStats()
	resp := statsResponse{
		Table:           s.table.Name(),
		NumTuples:       recordmgr.GetNumTuples(s.table),
		BufferHits:      st.Hits,
		BufferMisses:    st.Misses,
		BufferEvictions: st.Evictions,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleScan upgrades to a websocket and streams every live record in the
// table, one JSON object per message mapping each attribute name to the
// value GetAttr returns for it, closing the connection once the scan is
// exhausted.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(s.table.Name()) {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sc := recordmgr.StartScan(s.table, nil)
	defer recordmgr.CloseScan(sc)

	lock := s.lockFor(s.table)
	schema := s.table.Schema()
	for {
		lock.Lock()
		rec, err := sc.Next()
		lock.Unlock()
		if err != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan complete"),
				time.Now().Add(time.Second))
			return
		}

		values := make(map[string]interface{}, schema.NumAttr())
		for i, attrName := range schema.AttrNames {
			v, err := recordmgr.GetAttr(schema, rec, i)
			if err != nil {
				continue
			}
			values[attrName] = v
		}

		if err := conn.WriteJSON(values); err != nil {
			return
		}
	}
}
