package repository

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

// fakeCouch speaks enough of the CouchDB HTTP API for the repositories:
// database HEAD/PUT, document GET/PUT/DELETE, _find and _index.
type fakeCouch struct {
	mu      sync.Mutex
	dbs     map[string]map[string]map[string]interface{}
	revs    int
	indexes int
}

func newFakeCouch() *fakeCouch {
	return &fakeCouch{dbs: make(map[string]map[string]map[string]interface{})}
}

func (f *fakeCouch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	dbName := parts[0]
	docs, dbExists := f.dbs[dbName]

	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case http.MethodHead, http.MethodGet:
			if !dbExists {
				writeCouch(w, http.StatusNotFound, map[string]string{"error": "not_found", "reason": "Database does not exist."})
				return
			}
			writeCouch(w, http.StatusOK, map[string]string{"db_name": dbName})
		case http.MethodPut:
			f.dbs[dbName] = make(map[string]map[string]interface{})
			writeCouch(w, http.StatusCreated, map[string]bool{"ok": true})
		default:
			writeCouch(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
		}
		return
	}

	if !dbExists {
		writeCouch(w, http.StatusNotFound, map[string]string{"error": "not_found", "reason": "Database does not exist."})
		return
	}

	docID := parts[1]
	switch {
	case docID == "_find" && r.Method == http.MethodPost:
		f.find(w, r, docs)
	case docID == "_index" && r.Method == http.MethodPost:
		f.indexes++
		writeCouch(w, http.StatusOK, map[string]string{"result": "created", "id": "_design/indexes", "name": "idx"})
	case r.Method == http.MethodGet:
		doc, ok := docs[docID]
		if !ok {
			writeCouch(w, http.StatusNotFound, map[string]string{"error": "not_found", "reason": "missing"})
			return
		}
		writeCouch(w, http.StatusOK, doc)
	case r.Method == http.MethodPut:
		var doc map[string]interface{}
		if err := decodeRequest(r, &doc); err != nil {
			writeCouch(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "reason": err.Error()})
			return
		}
		if current, ok := docs[docID]; ok && current["_rev"] != doc["_rev"] {
			writeCouch(w, http.StatusConflict, map[string]string{"error": "conflict", "reason": "Document update conflict."})
			return
		}
		f.revs++
		rev := fmt.Sprintf("%d-abc", f.revs)
		doc["_id"] = docID
		doc["_rev"] = rev
		docs[docID] = doc
		w.Header().Set("ETag", `"`+rev+`"`)
		writeCouch(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": docID, "rev": rev})
	case r.Method == http.MethodDelete:
		current, ok := docs[docID]
		if !ok {
			writeCouch(w, http.StatusNotFound, map[string]string{"error": "not_found", "reason": "missing"})
			return
		}
		if current["_rev"] != r.URL.Query().Get("rev") {
			writeCouch(w, http.StatusConflict, map[string]string{"error": "conflict", "reason": "Document update conflict."})
			return
		}
		delete(docs, docID)
		f.revs++
		rev := fmt.Sprintf("%d-del", f.revs)
		w.Header().Set("ETag", `"`+rev+`"`)
		writeCouch(w, http.StatusOK, map[string]interface{}{"ok": true, "id": docID, "rev": rev})
	default:
		writeCouch(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	}
}

func (f *fakeCouch) find(w http.ResponseWriter, r *http.Request, docs map[string]map[string]interface{}) {
	var query struct {
		Selector map[string]interface{} `json:"selector"`
		Limit    int                    `json:"limit"`
	}
	if err := decodeRequest(r, &query); err != nil {
		writeCouch(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "reason": err.Error()})
		return
	}

	matched := make([]map[string]interface{}, 0)
	for _, doc := range docs {
		if matchSelector(doc, query.Selector) {
			matched = append(matched, doc)
		}
		if query.Limit > 0 && len(matched) == query.Limit {
			break
		}
	}

	writeCouch(w, http.StatusOK, map[string]interface{}{"docs": matched})
}

// matchSelector understands plain equality and {"$elemMatch": {"$eq": v}}.
func matchSelector(doc, selector map[string]interface{}) bool {
	for field, cond := range selector {
		value := doc[field]

		if ops, ok := cond.(map[string]interface{}); ok {
			elem, ok := ops["$elemMatch"].(map[string]interface{})
			if !ok {
				return false
			}
			items, _ := value.([]interface{})
			found := false
			for _, item := range items {
				if item == elem["$eq"] {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}

		if value != cond {
			return false
		}
	}
	return true
}

// decodeRequest reads a JSON body the way CouchDB does, including the
// gzip-encoded bodies the kivik driver sends.
func decodeRequest(r *http.Request, v interface{}) error {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		body = gz
	}
	return json.NewDecoder(body).Decode(v)
}

func writeCouch(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newTestDB(t *testing.T) (*kivik.DB, *fakeCouch) {
	t.Helper()

	couch := newFakeCouch()
	srv := httptest.NewServer(couch)
	t.Cleanup(srv.Close)

	client, err := kivik.New("couch", srv.URL)
	if err != nil {
		t.Fatalf("kivik.New() error = %v", err)
	}

	db, err := Open(t.Context(), client, "testdb")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	return db, couch
}
