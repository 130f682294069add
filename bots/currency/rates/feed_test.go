package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const dailyXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="09.03.2024" name="Foreign Currency Market">
<Valute ID="R01235"><NumCode>840</NumCode><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Доллар США</Name><Value>90,7493</Value></Valute>
<Valute ID="R01239"><NumCode>978</NumCode><CharCode>EUR</CharCode><Nominal>1</Nominal><Name>Евро</Name><Value>99,1155</Value></Valute>
<Valute ID="R01335"><NumCode>398</NumCode><CharCode>KZT</CharCode><Nominal>100</Nominal><Name>Казахстанских тенге</Name><Value>20,2061</Value></Valute>
</ValCurs>`

func serveXML(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	encoded, err := charmap.Windows1251.NewEncoder().String(body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=windows-1251")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(encoded))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCBRFeedDecodesWindows1251(t *testing.T) {
	srv := serveXML(t, dailyXML, http.StatusOK)
	entries, err := NewCBRFeed(srv.URL, srv.Client()).FetchDailyRates(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []Entry{
		{Code: "USD", Nominal: 1, Value: 90.7493},
		{Code: "EUR", Nominal: 1, Value: 99.1155},
		{Code: "KZT", Nominal: 100, Value: 20.2061},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestCBRFeedErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"status", dailyXML, http.StatusServiceUnavailable},
		{"malformed xml", "<ValCurs><Valute>", http.StatusOK},
		{"bad value", strings.Replace(dailyXML, "90,7493", "n/a", 1), http.StatusOK},
		{"zero nominal", strings.Replace(dailyXML, "<Nominal>100</Nominal>", "<Nominal>0</Nominal>", 1), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serveXML(t, tc.body, tc.status)
			if _, err := NewCBRFeed(srv.URL, srv.Client()).FetchDailyRates(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	cases := map[string]float64{"90,7493": 90.7493, " 1 ": 1, "0.5": 0.5}
	for in, want := range cases {
		got, err := parseDecimal(in)
		if err != nil || got != want {
			t.Errorf("parseDecimal(%q) = %v, %v", in, got, err)
		}
	}
}
