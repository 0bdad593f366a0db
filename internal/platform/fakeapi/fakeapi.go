// Package fakeapi is an in-memory stand-in for the clinic records API, used
// by tests. It stores documents as loose JSON objects the way the real API
// does, records every request it receives, and can be told to fail routes.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Doc is one stored JSON object.
type Doc = map[string]interface{}

// Option configures a Server.
type Option func(*Server)

// WithETags makes the server version patients, return ETag headers and
// enforce If-Match on updates and deletes.
func WithETags() Option {
	return func(s *Server) { s.etags = true }
}

// WithNumericFields makes the server store age, height and weight as JSON
// numbers and dateOfBirth as a timestamp, as a document database would.
func WithNumericFields() Option {
	return func(s *Server) { s.numeric = true }
}

// WithCriticalRule sets how the server derives is_critical_condition for a
// new reading. By default readings are never critical.
func WithCriticalRule(fn func(Doc) bool) Option {
	return func(s *Server) { s.critical = fn }
}

// Server is the fake API.
type Server struct {
	mu       sync.Mutex
	patients map[string]Doc
	order    []string
	versions map[string]int
	readings map[string][]Doc
	requests []string
	failures map[string]int

	etags    bool
	numeric  bool
	critical func(Doc) bool

	srv *httptest.Server
}

// New starts a Server on a loopback port.
func New(opts ...Option) *Server {
	s := &Server{
		patients: make(map[string]Doc),
		versions: make(map[string]int),
		readings: make(map[string][]Doc),
		failures: make(map[string]int),
		critical: func(Doc) bool { return false },
	}
	for _, o := range opts {
		o(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record)

	e.GET("/patients", s.listPatients)
	e.GET("/patients/critical", s.listCritical)
	e.GET("/patients/:id", s.getPatient)
	e.POST("/patients", s.createPatient)
	e.PUT("/patients/:id", s.updatePatient)
	e.DELETE("/patients/:id", s.deletePatient)
	e.GET("/patients/:id/clinicaldata", s.listReadings)
	e.POST("/patients/:id/clinicaldata", s.createReading)

	s.srv = httptest.NewServer(e)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Close() { s.srv.Close() }

// ---------------------------------------------------------------------------
// Test controls
// ---------------------------------------------------------------------------

// Fail makes every request matching method and route (an echo route pattern
// such as "/patients/:id") answer with status until ClearFailures.
func (s *Server) Fail(method, route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+route] = status
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Requests returns every request received as "METHOD /path", in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount returns how many requests were received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// SeedPatient stores doc as-is and returns its id.
func (s *Server) SeedPatient(doc Doc) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	stored := copyDoc(doc)
	stored["_id"] = id
	s.patients[id] = stored
	s.order = append(s.order, id)
	s.versions[id] = 1
	return id
}

// SeedReading stores a reading for patientID.
func (s *Server) SeedReading(patientID string, doc Doc) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	stored := copyDoc(doc)
	stored["_id"] = id
	stored["patient_id"] = patientID
	s.readings[patientID] = append(s.readings[patientID], stored)
	return id
}

// Patient returns the stored document for id.
func (s *Server) Patient(id string) (Doc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, false
	}
	return copyDoc(p), true
}

// Readings returns the stored readings of patientID.
func (s *Server) Readings(patientID string) []Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Doc, 0, len(s.readings[patientID]))
	for _, r := range s.readings[patientID] {
		out = append(out, copyDoc(r))
	}
	return out
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		s.mu.Lock()
		s.requests = append(s.requests, req.Method+" "+req.URL.Path)
		status, fail := s.failures[req.Method+" "+c.Path()]
		s.mu.Unlock()
		if fail {
			return c.JSON(status, map[string]string{"message": http.StatusText(status)})
		}
		return next(c)
	}
}

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

func (s *Server) listPatients(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Doc, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.patients[id])
	}
	return c.JSON(http.StatusOK, out)
}

// listCritical returns patients whose most recent reading is critical.
func (s *Server) listCritical(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Doc, 0)
	for _, id := range s.order {
		rs := s.readings[id]
		if len(rs) == 0 {
			continue
		}
		if flag, _ := rs[len(rs)-1]["is_critical_condition"].(bool); flag {
			out = append(out, s.patients[id])
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getPatient(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	p, ok := s.patients[id]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
	}
	s.setETag(c, id)
	return c.JSON(http.StatusOK, p)
}

func (s *Server) createPatient(c echo.Context) error {
	doc, err := decode(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	stored := s.store(doc)
	stored["_id"] = id
	s.patients[id] = stored
	s.order = append(s.order, id)
	s.versions[id] = 1
	s.setETag(c, id)
	return c.JSON(http.StatusCreated, stored)
}

func (s *Server) updatePatient(c echo.Context) error {
	doc, err := decode(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.patients[id]; !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
	}
	if !s.preconditionMet(c, id) {
		return c.JSON(http.StatusPreconditionFailed, map[string]string{"message": "Patient was modified"})
	}
	stored := s.store(doc)
	stored["_id"] = id
	s.patients[id] = stored
	s.versions[id]++
	s.setETag(c, id)
	return c.JSON(http.StatusOK, stored)
}

func (s *Server) deletePatient(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.patients[id]; !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
	}
	if !s.preconditionMet(c, id) {
		return c.JSON(http.StatusPreconditionFailed, map[string]string{"message": "Patient was modified"})
	}
	delete(s.patients, id)
	delete(s.versions, id)
	delete(s.readings, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Patient deleted"})
}

// ---------------------------------------------------------------------------
// Clinical data
// ---------------------------------------------------------------------------

func (s *Server) listReadings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.patients[id]; !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
	}
	out := make([]Doc, 0, len(s.readings[id]))
	out = append(out, s.readings[id]...)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createReading(c echo.Context) error {
	doc, err := decode(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.patients[id]; !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	stored := copyDoc(doc)
	stored["_id"] = newID()
	stored["patient_id"] = id
	stored["is_critical_condition"] = s.critical(doc)
	stored["createdAt"] = now
	stored["updatedAt"] = now
	s.readings[id] = append(s.readings[id], stored)
	return c.JSON(http.StatusCreated, stored)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func decode(c echo.Context) (Doc, error) {
	var doc Doc
	if err := json.NewDecoder(c.Request().Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	return doc, nil
}

// store converts a posted document to its stored shape.
func (s *Server) store(doc Doc) Doc {
	stored := copyDoc(doc)
	delete(stored, "_id")
	if !s.numeric {
		return stored
	}
	for _, k := range []string{"age", "height", "weight"} {
		if v, ok := stored[k].(string); ok {
			if f, err := json.Number(v).Float64(); err == nil {
				stored[k] = f
			}
		}
	}
	if v, ok := stored["dateOfBirth"].(string); ok {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			stored["dateOfBirth"] = t.UTC().Format("2006-01-02T15:04:05.000Z")
		}
	}
	return stored
}

func (s *Server) etag(id string) string {
	return fmt.Sprintf(`"v%d"`, s.versions[id])
}

// preconditionMet checks If-Match against the current version. Requests
// without the header always pass.
func (s *Server) preconditionMet(c echo.Context, id string) bool {
	if !s.etags {
		return true
	}
	match := c.Request().Header.Get("If-Match")
	return match == "" || match == s.etag(id)
}

func (s *Server) setETag(c echo.Context, id string) {
	if s.etags {
		c.Response().Header().Set("ETag", s.etag(id))
	}
}

// newID mimics a 24-hex-digit document id.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
}

func copyDoc(d Doc) Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
