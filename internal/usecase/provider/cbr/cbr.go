// Package cbr fetches daily exchange rates published by the Central Bank of
// Russia at https://www.cbr.ru/scripts/XML_daily.asp.
package cbr

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"cbrbot/internal/entity"
)

const DefaultURL = "https://www.cbr.ru/scripts/XML_daily.asp"

const (
	requestDateLayout  = "02/01/2006"
	responseDateLayout = "02.01.2006"
)

type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(rawURL string, timeout time.Duration, log *slog.Logger) *Client {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	return &Client{
		url:        rawURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// Fetch returns RUB quotes for date, or for the latest published day when date is nil.
func (c *Client) Fetch(ctx context.Context, date *time.Time) (entity.RatePayload, error) {
	const op = "cbr.Fetch"

	reqURL, err := c.requestURL(date)
	if err != nil {
		return entity.RatePayload{}, fmt.Errorf("%s: %w: %w", op, entity.ErrProviderTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return entity.RatePayload{}, fmt.Errorf("%s: %w: %w", op, entity.ErrProviderTransport, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.RatePayload{}, fmt.Errorf("%s: %w: %w", op, entity.ErrProviderTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return entity.RatePayload{}, fmt.Errorf("%s: %w: unexpected status %d: %s",
			op, entity.ErrProviderTransport, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	payload, err := c.decode(resp.Body)
	if err != nil {
		return entity.RatePayload{}, fmt.Errorf("%s: %w: %w", op, entity.ErrProviderTransport, err)
	}

	c.log.Debug("cbr rates received",
		slog.String("url", reqURL),
		slog.Int("quotes", len(payload.Quotes)),
		slog.Duration("duration", time.Since(start)))

	return payload, nil
}

func (c *Client) requestURL(date *time.Time) (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	if date != nil {
		q := u.Query()
		q.Set("date_req", date.Format(requestDateLayout))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) decode(body io.Reader) (entity.RatePayload, error) {
	decoder := xml.NewDecoder(body)
	decoder.CharsetReader = charset.NewReaderLabel

	var doc valCurs
	if err := decoder.Decode(&doc); err != nil {
		return entity.RatePayload{}, fmt.Errorf("decode xml: %w", err)
	}

	payload := entity.RatePayload{Base: entity.RUB}
	if doc.Date != "" {
		date, err := time.Parse(responseDateLayout, doc.Date)
		if err != nil {
			return entity.RatePayload{}, fmt.Errorf("parse date %q: %w", doc.Date, err)
		}
		payload.Date = date
	}

	for _, v := range doc.Valutes {
		code := entity.Currency(strings.ToUpper(strings.TrimSpace(v.CharCode)))
		nominal, nominalErr := parseNumber(v.Nominal)
		value, valueErr := parseNumber(v.Value)
		if code == "" || nominalErr != nil || valueErr != nil {
			c.log.Warn("skipping malformed cbr quote",
				slog.String("code", string(code)),
				slog.String("nominal", v.Nominal),
				slog.String("value", v.Value))
			continue
		}
		payload.Quotes = append(payload.Quotes, entity.Quote{Code: code, Nominal: nominal, Value: value})
	}

	return payload, nil
}

// parseNumber accepts the decimal comma used by the CBR feed.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}
