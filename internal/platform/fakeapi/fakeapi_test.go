package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func do(t *testing.T, method, url, body string, header map[string]string) (*http.Response, Doc) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var doc Doc
	json.NewDecoder(resp.Body).Decode(&doc)
	return resp, doc
}

func TestServer_PatientLifecycle(t *testing.T) {
	s := New()
	defer s.Close()

	resp, created := do(t, http.MethodPost, s.URL()+"/patients", `{"firstName":"Anna","_id":"client-chosen"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	id, _ := created["_id"].(string)
	if len(id) != 24 || id == "client-chosen" {
		t.Fatalf("expected server-assigned 24 char id, got %q", id)
	}

	resp, _ = do(t, http.MethodPut, s.URL()+"/patients/"+id, `{"firstName":"Anne"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	stored, _ := s.Patient(id)
	if stored["firstName"] != "Anne" {
		t.Errorf("stored firstName = %v", stored["firstName"])
	}

	s.SeedReading(id, Doc{"bp_systolic": "120"})
	resp, _ = do(t, http.MethodDelete, s.URL()+"/patients/"+id, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, ok := s.Patient(id); ok {
		t.Error("expected patient to be gone")
	}
	if len(s.Readings(id)) != 0 {
		t.Error("expected readings to be deleted with the patient")
	}

	resp, _ = do(t, http.MethodGet, s.URL()+"/patients/"+id, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestServer_FailAndRequestLog(t *testing.T) {
	s := New()
	defer s.Close()
	id := s.SeedPatient(Doc{"firstName": "Anna"})

	s.Fail(http.MethodGet, "/patients/:id", http.StatusInternalServerError)
	resp, _ := do(t, http.MethodGet, s.URL()+"/patients/"+id, "", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}

	s.ClearFailures()
	resp, _ = do(t, http.MethodGet, s.URL()+"/patients/"+id, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after clear = %d, want 200", resp.StatusCode)
	}

	if s.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2", s.RequestCount())
	}
	if got := s.Requests()[0]; got != "GET /patients/"+id {
		t.Errorf("first request = %q", got)
	}
}

func TestServer_ETags(t *testing.T) {
	s := New(WithETags())
	defer s.Close()
	id := s.SeedPatient(Doc{"firstName": "Anna"})

	resp, _ := do(t, http.MethodGet, s.URL()+"/patients/"+id, "", nil)
	etag := resp.Header.Get("ETag")
	if etag != `"v1"` {
		t.Fatalf("ETag = %q", etag)
	}

	resp, _ = do(t, http.MethodPut, s.URL()+"/patients/"+id, `{"firstName":"B"}`, map[string]string{"If-Match": etag})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("matching update status = %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPut, s.URL()+"/patients/"+id, `{"firstName":"C"}`, map[string]string{"If-Match": etag})
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Errorf("stale update status = %d, want 412", resp.StatusCode)
	}
}

func TestServer_NumericFieldsAndCriticalList(t *testing.T) {
	s := New(WithNumericFields(), WithCriticalRule(func(d Doc) bool { return d["bp_systolic"] == "200" }))
	defer s.Close()

	_, created := do(t, http.MethodPost, s.URL()+"/patients", `{"age":"34","dateOfBirth":"1990-01-01"}`, nil)
	if created["age"] != float64(34) {
		t.Errorf("age = %#v, want number", created["age"])
	}
	if created["dateOfBirth"] != "1990-01-01T00:00:00.000Z" {
		t.Errorf("dateOfBirth = %v", created["dateOfBirth"])
	}
	id := created["_id"].(string)

	_, reading := do(t, http.MethodPost, s.URL()+"/patients/"+id+"/clinicaldata", `{"bp_systolic":"200"}`, nil)
	if reading["is_critical_condition"] != true {
		t.Errorf("expected server to flag reading, got %v", reading["is_critical_condition"])
	}

	resp, err := http.Get(s.URL() + "/patients/critical")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []Doc
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != 1 || list[0]["_id"] != id {
		t.Errorf("critical list = %v", list)
	}
}
