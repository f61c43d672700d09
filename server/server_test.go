package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bitbriks/bitbrik/store"
)

func configureServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	ts := httptest.NewServer(New(Config{Documents: st, Sanitize: true}))
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	return ts
}

func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return res.StatusCode, out
}

func create(t *testing.T, ts *httptest.Server, html string) DocumentResponse {
	t.Helper()
	code, body := do(t, http.MethodPost, ts.URL+"/v1/documents", map[string]string{"title": "doc", "html": html})
	if code != http.StatusCreated {
		t.Fatalf("create status got=%d want=%d body=%s", code, http.StatusCreated, body)
	}
	var d DocumentResponse
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return d
}

func TestImport(t *testing.T) {
	ts := configureServer(t)

	code, body := do(t, http.MethodPost, ts.URL+"/v1/import", map[string]string{"html": "<p>hi <b>there</b></p>"})
	if code != http.StatusOK {
		t.Fatalf("status got=%d want=%d body=%s", code, http.StatusOK, body)
	}
	var res ImportResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(string(res.State), `"root"`) || !strings.Contains(string(res.State), `"there"`) {
		t.Fatalf("state got=%s", res.State)
	}

	if code, _ := do(t, http.MethodPost, ts.URL+"/v1/import", map[string]string{}); code != http.StatusBadRequest {
		t.Fatalf("empty import status got=%d want=%d", code, http.StatusBadRequest)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	ts := configureServer(t)
	d := create(t, ts, "<h1>Hello</h1><p>world</p>")
	if d.ID == "" || d.Title != "doc" || len(d.State) == 0 {
		t.Fatalf("created document got=%+v", d)
	}
	base := ts.URL + "/v1/documents/" + d.ID

	code, body := do(t, http.MethodGet, ts.URL+"/v1/documents", nil)
	var list []DocumentResponse
	if err := json.Unmarshal(body, &list); err != nil || code != http.StatusOK {
		t.Fatalf("list status=%d err=%v body=%s", code, err, body)
	}
	if len(list) != 1 || list[0].ID != d.ID || len(list[0].State) != 0 {
		t.Fatalf("list got=%+v", list)
	}

	code, body = do(t, http.MethodGet, base+"/html", nil)
	if code != http.StatusOK || !strings.Contains(string(body), "<h1") || !strings.Contains(string(body), "Hello") {
		t.Fatalf("html status=%d body=%s", code, body)
	}

	code, body = do(t, http.MethodGet, base+"/markdown", nil)
	if code != http.StatusOK || !strings.Contains(string(body), "# Hello") {
		t.Fatalf("markdown status=%d body=%s", code, body)
	}

	payload := map[string]any{"products": []map[string]string{{"id": "p1", "name": "Desk Lamp", "url": "https://example.com/lamp"}}}
	code, body = do(t, http.MethodPut, base+"/products", payload)
	if code != http.StatusOK {
		t.Fatalf("products status got=%d want=%d body=%s", code, http.StatusOK, body)
	}
	_, body = do(t, http.MethodGet, base+"/html", nil)
	if !strings.Contains(string(body), "data-lexical-products") || !strings.Contains(string(body), "Desk Lamp") {
		t.Fatalf("html after products body=%s", body)
	}

	if code, _ := do(t, http.MethodDelete, base, nil); code != http.StatusNoContent {
		t.Fatalf("delete status got=%d want=%d", code, http.StatusNoContent)
	}
	if code, _ := do(t, http.MethodGet, base, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete status got=%d want=%d", code, http.StatusNotFound)
	}
}

func TestProducts_Validation(t *testing.T) {
	ts := configureServer(t)
	d := create(t, ts, "<p>x</p>")

	payload := map[string]any{"products": []map[string]string{{"name": "no id"}}}
	if code, _ := do(t, http.MethodPut, ts.URL+"/v1/documents/"+d.ID+"/products", payload); code != http.StatusBadRequest {
		t.Fatalf("status got=%d want=%d", code, http.StatusBadRequest)
	}
	payload = map[string]any{"products": []map[string]string{{"id": "1", "name": "ok"}}}
	if code, _ := do(t, http.MethodPut, ts.URL+"/v1/documents/missing/products", payload); code != http.StatusNotFound {
		t.Fatalf("missing document status got=%d want=%d", code, http.StatusNotFound)
	}
}

func TestCreate_Validation(t *testing.T) {
	ts := configureServer(t)

	if code, _ := do(t, http.MethodPost, ts.URL+"/v1/documents", map[string]string{"title": "empty"}); code != http.StatusBadRequest {
		t.Fatalf("no content status got=%d want=%d", code, http.StatusBadRequest)
	}
	bad := map[string]any{"state": map[string]any{"root": map[string]any{"type": "root", "children": []any{map[string]any{"type": "nope"}}}}}
	if code, _ := do(t, http.MethodPost, ts.URL+"/v1/documents", bad); code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown node status got=%d want=%d", code, http.StatusUnprocessableEntity)
	}
}

func TestMetrics(t *testing.T) {
	ts := configureServer(t)
	do(t, http.MethodGet, ts.URL+"/v1/documents", nil)

	code, body := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	if code != http.StatusOK {
		t.Fatalf("status got=%d want=%d", code, http.StatusOK)
	}
	if !strings.Contains(string(body), `url_hit_count{method="GET",status="200",url="/v1/documents/"}`) {
		t.Fatalf("metrics missing hit counter:\n%s", body)
	}
}
