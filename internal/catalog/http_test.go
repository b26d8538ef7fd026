package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"AslyStore/internal/catalog"
	"AslyStore/pkg/kit"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	h := catalog.NewHandler(&catalog.Server{Store: catalog.NewStore()}, catalog.HTTPDeps{
		MetricsDeps: kit.MetricsDeps{Service: "catalog", Registry: prometheus.NewRegistry()},
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

type listBody struct {
	Items      []catalog.Product `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
	Empty      bool              `json:"empty"`
	Sort       string            `json:"sort"`
}

func TestListProducts_DefaultPaging(t *testing.T) {
	srv := newCatalogServer(t)

	var body listBody
	if code := getJSON(t, srv.URL+"/products", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.PageSize != catalog.DefaultPageSize || len(body.Items) != catalog.DefaultPageSize {
		t.Fatalf("expected a full page of %d, got size=%d items=%d", catalog.DefaultPageSize, body.PageSize, len(body.Items))
	}
	if body.TotalItems != len(catalog.Seed()) || body.TotalPages != 3 {
		t.Fatalf("unexpected totals: %+v", body)
	}
	if body.Sort != "featured" {
		t.Fatalf("expected featured sort, got %q", body.Sort)
	}
	if !body.Items[0].Featured {
		t.Fatalf("featured products should lead: %s", body.Items[0].ID)
	}
}

func TestListProducts_FiltersAndFacets(t *testing.T) {
	srv := newCatalogServer(t)

	var body listBody
	url := srv.URL + "/products?category=lighting&wattage=low,medium&sort=price-low&in_stock=true"
	if code := getJSON(t, url, &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var got []string
	for _, p := range body.Items {
		got = append(got, p.ID)
	}
	want := []string{"p14", "p11", "p12"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestListProducts_EmptyIsOK(t *testing.T) {
	srv := newCatalogServer(t)

	var body listBody
	if code := getJSON(t, srv.URL+"/products?query=nothing-matches-this", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !body.Empty || body.Items == nil || len(body.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", body)
	}
}

func TestListProducts_BadInput(t *testing.T) {
	srv := newCatalogServer(t)

	for _, q := range []string{
		"sort=cheapest",
		"page=two",
		"min_price=-1",
		"in_stock=maybe",
		"category=wiring&gauge=99",
	} {
		if code := getJSON(t, srv.URL+"/products?"+q, nil); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, code)
		}
	}
}

func TestListProducts_IgnoresForeignParams(t *testing.T) {
	srv := newCatalogServer(t)

	var want listBody
	if code := getJSON(t, srv.URL+"/products?category=lighting", &want); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	for _, q := range []string{
		"category=lighting&utm_source=newsletter",
		"category=lighting&gauge=14-awg",
		"category=lighting&fbclid=abc&ref=home",
	} {
		var got listBody
		if code := getJSON(t, srv.URL+"/products?"+q, &got); code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", q, code)
		}
		if got.TotalItems != want.TotalItems {
			t.Fatalf("%s: total_items=%d want %d", q, got.TotalItems, want.TotalItems)
		}
	}
}

func TestGetProduct(t *testing.T) {
	srv := newCatalogServer(t)

	var p catalog.Product
	if code := getJSON(t, srv.URL+"/products/p1", &p); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if p.ID != "p1" || !p.OnSale || p.SalePrice == nil || p.SalePrice.String() != "79.99" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Reviews) == 0 || len(p.Specifications) == 0 {
		t.Fatalf("expected detail fields on p1")
	}

	if code := getJSON(t, srv.URL+"/products/nope", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestRelatedAndCollections(t *testing.T) {
	srv := newCatalogServer(t)

	var related []catalog.Product
	if code := getJSON(t, srv.URL+"/products/p11/related?limit=3", &related); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(related) != 3 {
		t.Fatalf("expected 3 related, got %d", len(related))
	}
	for _, p := range related {
		if p.Category != "lighting" || p.ID == "p11" {
			t.Fatalf("unexpected related product %s/%s", p.ID, p.Category)
		}
	}

	var best []catalog.Product
	if code := getJSON(t, srv.URL+"/collections/bestsellers?exclude=p1", &best); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, p := range best {
		if !p.IsBestseller || p.ID == "p1" {
			t.Fatalf("unexpected bestseller %s", p.ID)
		}
	}

	if code := getJSON(t, srv.URL+"/collections/clearance", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestCategories(t *testing.T) {
	srv := newCatalogServer(t)

	var cats []catalog.Category
	if code := getJSON(t, srv.URL+"/categories", &cats); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(cats) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cats))
	}

	var tools catalog.Category
	if code := getJSON(t, srv.URL+"/categories/tools", &tools); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(tools.Facets) != 2 || tools.Facets[1].Key != "brand" {
		t.Fatalf("unexpected tools facets: %+v", tools.Facets)
	}

	if code := getJSON(t, srv.URL+"/categories/garden", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{Store: catalog.NewStore()}, catalog.HTTPDeps{
		MetricsDeps: kit.MetricsDeps{Service: "catalog", Registry: reg, MetricsEnabled: true, MetricsToken: "secret"},
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}
