// Package lcu talks to the League Client's local HTTPS API: typed REST
// GETs plus a websocket subscription to OnJsonApiEvent_* topics, the
// same WAMP-ish protocol Reynbow-showmeskins's companion/lcu.go drives,
// authenticated with the Basic scheme from the Riot lockfile.
package lcu

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// eventTopicPrefix is prepended to every subscription URI when
// sending the WAMP subscribe frame, and stripped back off incoming
// event frames so callers match on the bare path they subscribed
// with.
const eventTopicPrefix = "OnJsonApiEvent_"

// Client is a connected, authenticated handle to one running League
// Client instance.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	baseURL    string
}

// New builds a Client from parsed lockfile credentials. If pinnedCert
// is non-nil, it is used as the sole trusted root (matching the
// embedded riotgames.pem pin in the original listener); otherwise the
// client falls back to skipping verification, since the League Client
// always presents a self-signed cert for 127.0.0.1.
func New(creds Credentials, pinnedCert *x509.Certificate) *Client {
	tlsCfg := &tls.Config{InsecureSkipVerify: true}
	if pinnedCert != nil {
		pool := x509.NewCertPool()
		pool.AddCert(pinnedCert)
		tlsCfg = &tls.Config{RootCAs: pool}
	}
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{TLSClientConfig: tlsCfg},
		},
		baseURL: fmt.Sprintf("https://127.0.0.1:%s", creds.Port),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.creds.BasicAuth())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Get performs a typed GET against the LCU's local REST API.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return zero, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("lcu: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return zero, fmt.Errorf("lcu: GET %s: status %d", path, resp.StatusCode)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("lcu: GET %s: decode: %w", path, err)
	}
	return out, nil
}

// Event is a decoded OnJsonApiEvent frame delivered over the
// subscription websocket.
type Event struct {
	URI  string
	Data json.RawMessage
}

// Subscribe opens the LCU event websocket and subscribes to the given
// OnJsonApiEvent_* URIs, following Reynbow's connectToLCU: a single
// [5, "OnJsonApiEvent_<path>"] frame per topic, then a read loop that
// decodes WAMP event frames (opcode 8) and forwards their payload.
// The returned channel is closed when ctx is cancelled or the
// connection drops; callers should treat closure as "client vanished".
func (c *Client) Subscribe(ctx context.Context, uris ...string) (<-chan Event, error) {
	dialer := websocket.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		HandshakeTimeout: 5 * time.Second,
	}
	header := http.Header{"Authorization": {c.creds.BasicAuth()}}
	wsURL := fmt.Sprintf("wss://127.0.0.1:%s/", c.creds.Port)
	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("lcu: websocket dial: %w", err)
	}

	for _, uri := range uris {
		frame := []interface{}{5, eventTopicPrefix + uri}
		if err := conn.WriteJSON(frame); err != nil {
			conn.Close()
			return nil, fmt.Errorf("lcu: subscribe %s: %w", uri, err)
		}
	}

	events := make(chan Event, 32)
	go func() {
		defer close(events)
		defer conn.Close()
		go func() {
			<-ctx.Done()
			conn.Close()
		}()
		for {
			var frame []json.RawMessage
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() == nil {
					log.Printf("[lcu] websocket read error: %v", err)
				}
				return
			}
			if len(frame) != 3 {
				continue
			}
			var opcode int
			if err := json.Unmarshal(frame[0], &opcode); err != nil || opcode != 8 {
				continue
			}
			var uri string
			if err := json.Unmarshal(frame[1], &uri); err != nil {
				continue
			}
			uri = strings.TrimPrefix(uri, eventTopicPrefix)
			select {
			case events <- Event{URI: uri, Data: frame[2]}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
