package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const naiveLayout = "2006-01-02T15:04:05"

// parseSupplierTime accepts RFC3339 and the zone-less layouts suppliers use.
func parseSupplierTime(value string, layouts ...string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range append(layouts, naiveLayout) {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time %q", value)
}

func durationBetween(depart, arrive time.Time, fallback time.Duration) time.Duration {
	if depart.IsZero() || arrive.IsZero() {
		return fallback
	}
	diff := arrive.Sub(depart)
	if diff <= 0 {
		return fallback
	}
	return diff
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration understands the day/hour/minute/second subset of ISO-8601
// that airline APIs return, e.g. PT7H5M or P1DT2H.
func parseISODuration(v string) time.Duration {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(v)))
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		d += time.Duration(n) * unit
	}
	return d
}

func parseAmount(v string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// doRequest sends req and decodes a 2xx body with decode. Transport failures
// and 429/5xx answers are temporary; every failure is ErrSupplierUnavailable.
func doRequest(hc *http.Client, req *http.Request, decode func(io.Reader) error) error {
	resp, err := hc.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return fmt.Errorf("%w: %w", ErrSupplierUnavailable, req.Context().Err())
		}
		return fmt.Errorf("%w: %w: %w", ErrSupplierUnavailable, ErrTemporary, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %w: %w", ErrSupplierUnavailable, ErrTemporary, statusErr)
		}
		return fmt.Errorf("%w: %w", ErrSupplierUnavailable, statusErr)
	}

	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrSupplierUnavailable, err)
	}
	return nil
}

func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doRequest(hc, req, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(out)
	})
}

func httpClient(hc *http.Client, timeout time.Duration) *http.Client {
	if hc != nil {
		return hc
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
