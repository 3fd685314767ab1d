package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Call is one request received by a FakeElastic.
type Call struct {
	Method string
	Path   string
}

func (c Call) String() string {
	return c.Method + " " + c.Path
}

type fakeIndex struct {
	definition json.RawMessage
	docs       map[string]json.RawMessage
	order      []string
}

func (fi *fakeIndex) put(id string, doc json.RawMessage) {
	if _, ok := fi.docs[id]; !ok {
		fi.order = append(fi.order, id)
	}
	fi.docs[id] = doc
}

// FakeElastic is an in-memory stand-in for the parts of the Elasticsearch
// REST API an import uses. Documents are searchable as soon as they are
// indexed.
type FakeElastic struct {
	*httptest.Server

	// Username and Password, when Username is set, are the only accepted
	// basic auth credentials.
	Username string
	Password string

	// ItemErrors fails bulk items whose _id is a key. The value is reported
	// as the error type.
	ItemErrors map[string]string

	// Statuses forces an error status for requests, keyed by
	// "METHOD /path".
	Statuses map[string]int

	mu           sync.Mutex
	calls        []Call
	indices      map[string]*fakeIndex
	bulkSizes    []int
	contentTypes []string
}

// NewFakeElastic starts a FakeElastic over plain HTTP. Close it when done.
func NewFakeElastic() *FakeElastic {
	f := newFakeElastic()
	f.Server = httptest.NewServer(f)
	return f
}

// NewFakeElasticTLS starts a FakeElastic over HTTPS with a self-signed
// certificate.
func NewFakeElasticTLS() *FakeElastic {
	f := newFakeElastic()
	f.Server = httptest.NewTLSServer(f)
	return f
}

func newFakeElastic() *FakeElastic {
	return &FakeElastic{
		ItemErrors: map[string]string{},
		Statuses:   map[string]int{},
		indices:    map[string]*fakeIndex{},
	}
}

// Calls returns every request received so far, in order.
func (f *FakeElastic) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of requests received with method.
func (f *FakeElastic) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// BulkSizes returns the number of documents in each bulk request received.
func (f *FakeElastic) BulkSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.bulkSizes...)
}

// BulkContentTypes returns the Content-Type header of each bulk request.
func (f *FakeElastic) BulkContentTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.contentTypes...)
}

// Definition returns the body index was created with, or nil if it doesn't
// exist.
func (f *FakeElastic) Definition(index string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fi, ok := f.indices[index]; ok {
		return fi.definition
	}
	return nil
}

// Docs returns the documents of index keyed by _id.
func (f *FakeElastic) Docs(index string) map[string]json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := map[string]json.RawMessage{}
	if fi, ok := f.indices[index]; ok {
		for id, doc := range fi.docs {
			docs[id] = doc
		}
	}
	return docs
}

// AddDoc stores a document directly, creating index if needed.
func (f *FakeElastic) AddDoc(index, id string, doc json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index(index).put(id, doc)
}

func (f *FakeElastic) index(name string) *fakeIndex {
	fi, ok := f.indices[name]
	if !ok {
		fi = &fakeIndex{docs: map[string]json.RawMessage{}}
		f.indices[name] = fi
	}
	return fi
}

func (f *FakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: r.Method, Path: r.URL.Path})

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if f.Username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != f.Username || pass != f.Password {
			writeError(w, http.StatusUnauthorized, "security_exception", "unable to authenticate user")
			return
		}
	}
	if status, ok := f.Statuses[r.Method+" "+r.URL.Path]; ok {
		writeError(w, status, "fake_exception", "forced failure")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":         "fake-node",
			"cluster_name": "fake-cluster",
			"version":      map[string]string{"number": "8.11.1"},
			"tagline":      "You Know, for Search",
		})
	case parts[0] == "_bulk" && (r.Method == http.MethodPost || r.Method == http.MethodPut):
		f.bulk(w, r)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := f.indices[parts[0]]; !ok {
			writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+parts[0]+"]")
			return
		}
		delete(f.indices, parts[0])
		writeJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
	case len(parts) == 1 && r.Method == http.MethodPut:
		if _, ok := f.indices[parts[0]]; ok {
			writeError(w, http.StatusBadRequest, "resource_already_exists_exception", "index ["+parts[0]+"] already exists")
			return
		}
		body, _ := ioutil.ReadAll(r.Body)
		f.index(parts[0]).definition = body
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true, "index": parts[0]})
	case len(parts) == 2 && parts[1] == "_count":
		fi, ok := f.indices[parts[0]]
		if !ok {
			writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+parts[0]+"]")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": len(fi.docs)})
	case len(parts) == 2 && parts[1] == "_search":
		f.search(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "_refresh":
		writeJSON(w, http.StatusOK, map[string]interface{}{"_shards": map[string]int{"total": 1, "successful": 1}})
	default:
		writeError(w, http.StatusBadRequest, "illegal_argument_exception", fmt.Sprintf("unsupported request %s %s", r.Method, r.URL.Path))
	}
}

func (f *FakeElastic) bulk(w http.ResponseWriter, r *http.Request) {
	f.contentTypes = append(f.contentTypes, r.Header.Get("Content-Type"))
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "parse_exception", err.Error())
		return
	}
	type meta struct {
		Index string `json:"_index"`
		ID    string `json:"_id"`
	}
	items := []map[string]interface{}{}
	hasErrors := false
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		action := map[string]meta{}
		if err := json.Unmarshal(line, &action); err != nil {
			writeError(w, http.StatusBadRequest, "parse_exception", "bad action line: "+err.Error())
			return
		}
		m, ok := action["index"]
		if !ok {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "only index actions are supported")
			return
		}
		if !scanner.Scan() {
			writeError(w, http.StatusBadRequest, "parse_exception", "action without document")
			return
		}
		doc := append(json.RawMessage(nil), bytes.TrimSpace(scanner.Bytes())...)
		if !json.Valid(doc) {
			writeError(w, http.StatusBadRequest, "parse_exception", "bad document line")
			return
		}
		if errType, ok := f.ItemErrors[m.ID]; ok {
			hasErrors = true
			items = append(items, map[string]interface{}{"index": map[string]interface{}{
				"_index": m.Index,
				"_id":    m.ID,
				"status": http.StatusBadRequest,
				"error":  map[string]string{"type": errType, "reason": "failed to index " + m.ID},
			}})
			continue
		}
		f.index(m.Index).put(m.ID, doc)
		items = append(items, map[string]interface{}{"index": map[string]interface{}{
			"_index": m.Index,
			"_id":    m.ID,
			"status": http.StatusCreated,
			"result": "created",
		}})
	}
	f.bulkSizes = append(f.bulkSizes, len(items))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"took":   1,
		"errors": hasErrors,
		"items":  items,
	})
}

func (f *FakeElastic) search(w http.ResponseWriter, r *http.Request, index string) {
	fi, ok := f.indices[index]
	if !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+index+"]")
		return
	}
	size := 10
	if s := r.URL.Query().Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n
		}
	}
	hits := []map[string]interface{}{}
	for _, id := range fi.order {
		if len(hits) >= size {
			break
		}
		hits = append(hits, map[string]interface{}{"_index": index, "_id": id, "_source": fi.docs[id]})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(fi.docs), "relation": "eq"},
			"hits":  hits,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, reason string) {
	writeJSON(w, status, map[string]interface{}{
		"error":  map[string]string{"type": typ, "reason": reason},
		"status": status,
	})
}
