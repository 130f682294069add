// Package rates fetches the Central Bank of Russia daily rates and serves
// conversion rates from a time-bounded cache.
package rates

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// DefaultFeedURL is the CBR daily rates endpoint.
const DefaultFeedURL = "https://www.cbr.ru/scripts/XML_daily.asp"

// Entry is one currency quote: Nominal units of Code cost Value base units.
type Entry struct {
	Code    string
	Nominal float64
	Value   float64
}

// Feed supplies the daily quotes.
type Feed interface {
	FetchDailyRates(ctx context.Context) ([]Entry, error)
}

// CBRFeed reads the CBR XML_daily document.
type CBRFeed struct {
	url    string
	client *http.Client
}

// NewCBRFeed returns a feed for url; an empty url selects DefaultFeedURL.
func NewCBRFeed(url string, client *http.Client) *CBRFeed {
	if url == "" {
		url = DefaultFeedURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &CBRFeed{url: url, client: client}
}

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []struct {
		CharCode string `xml:"CharCode"`
		Nominal  string `xml:"Nominal"`
		Value    string `xml:"Value"`
	} `xml:"Valute"`
}

// FetchDailyRates implements Feed.
func (f *CBRFeed) FetchDailyRates(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rates: fetch: unexpected status %s", resp.Status)
	}
	return decodeDaily(resp.Body)
}

func decodeDaily(r io.Reader) ([]Entry, error) {
	dec := xml.NewDecoder(r)
	// The feed declares windows-1251.
	dec.CharsetReader = charset.NewReaderLabel

	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("rates: decode: %w", err)
	}
	entries := make([]Entry, 0, len(doc.Valutes))
	for _, v := range doc.Valutes {
		code := strings.ToUpper(strings.TrimSpace(v.CharCode))
		nominal, err := parseDecimal(v.Nominal)
		if err != nil || nominal <= 0 {
			return nil, fmt.Errorf("rates: %s: bad nominal %q", code, v.Nominal)
		}
		value, err := parseDecimal(v.Value)
		if err != nil || value <= 0 {
			return nil, fmt.Errorf("rates: %s: bad value %q", code, v.Value)
		}
		entries = append(entries, Entry{Code: code, Nominal: nominal, Value: value})
	}
	return entries, nil
}

// parseDecimal accepts "," as the decimal separator.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}
