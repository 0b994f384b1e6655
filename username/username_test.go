package username

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOffer = "lno1qgsqvgnwgcg35z6ee2h3yczraddm72xrfua9uve2rlrm9deu7xyfzr"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeUsername(t *testing.T) {
	valid := map[string]string{
		"alice":    "alice",
		"Bob":      "bob",
		" carol ":  "carol",
		"dave_99":  "dave_99",
		"e-mail-x": "e-mail-x",
	}
	for in, want := range valid {
		got, err := NormalizeUsername(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "a.b", "white space", "émile", strings.Repeat("x", 64), "semi;colon"} {
		_, err := NormalizeUsername(in)
		assert.ErrorIs(t, err, ErrInvalidUsername, in)
	}
}

func TestRecordFormat(t *testing.T) {
	assert.Equal(t, "alice.user._bitcoin-payment.example.com", RecordName("alice", "example.com"))
	assert.Equal(t, `"bitcoin:?lno=lno1abc"`, RecordContent("lno1abc"))
}

func TestNewService(t *testing.T) {
	_, err := NewService(Config{Domain: "localhost"}, testLogger())
	assert.Error(t, err)

	s, err := NewService(Config{Domain: "Example.COM."}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "example.com", s.Domain())
	assert.False(t, s.Configured())
	assert.False(t, s.Simulated())
}

func TestCreate_Simulated(t *testing.T) {
	s, err := NewService(Config{Domain: "example.com", Development: true}, testLogger())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	assert.True(t, s.Simulated())

	reg, err := s.Create(context.Background(), "Alice", testOffer)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", reg.Username)
	assert.Equal(t, "alice.user._bitcoin-payment.example.com", reg.BitcoinAddress)
	assert.Equal(t, "simulated-record-1700000000123", reg.DNSRecord.ID)
	assert.Equal(t, "TXT", reg.DNSRecord.Type)
	assert.Equal(t, `"bitcoin:?lno=`+testOffer+`"`, reg.DNSRecord.Content)
	assert.Equal(t, RecordTTL, reg.DNSRecord.TTL)
	assert.NotEmpty(t, reg.DNSRecord.CreatedOn)
}

func TestCreate_NotConfigured(t *testing.T) {
	s, err := NewService(Config{Domain: "example.com"}, testLogger())
	require.NoError(t, err)

	_, err = s.Create(context.Background(), "alice", testOffer)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreate_Validation(t *testing.T) {
	s, err := NewService(Config{Domain: "example.com", Development: true}, testLogger())
	require.NoError(t, err)

	_, err = s.Create(context.Background(), "", testOffer)
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = s.Create(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrInvalidOffer)

	_, err = s.Create(context.Background(), "alice", "lnbc1notanoffer")
	assert.ErrorIs(t, err, ErrInvalidOffer)

	_, err = s.Create(context.Background(), "alice", "lno1abc&x=1")
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func newCloudflareService(t *testing.T) (*Service, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	s, err := NewService(Config{
		Domain:             "example.com",
		CloudflareAPIToken: "token",
		CloudflareZoneID:   "zone",
		CloudflareAPIURL:   "https://cf.test/client/v4/",
		HTTPClient:         &http.Client{Transport: mock},
	}, testLogger())
	require.NoError(t, err)
	return s, mock
}

func TestCreate_Cloudflare(t *testing.T) {
	s, mock := newCloudflareService(t)
	assert.False(t, s.Simulated())

	var got struct {
		Type    string `json:"type"`
		Name    string `json:"name"`
		Content string `json:"content"`
		TTL     int    `json:"ttl"`
	}
	var auth string
	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		func(req *http.Request) (*http.Response, error) {
			auth = req.Header.Get("Authorization")
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"success": true,
				"errors":  []any{},
				"result": map[string]any{
					"id":         "rec-1",
					"name":       got.Name,
					"type":       got.Type,
					"content":    got.Content,
					"ttl":        got.TTL,
					"created_on": "2024-01-01T00:00:00Z",
				},
			})
		})

	reg, err := s.Create(context.Background(), "alice", testOffer)
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "TXT", got.Type)
	assert.Equal(t, "alice.user._bitcoin-payment.example.com", got.Name)
	assert.Equal(t, `"bitcoin:?lno=`+testOffer+`"`, got.Content)
	assert.Equal(t, 3600, got.TTL)

	assert.Equal(t, "rec-1", reg.DNSRecord.ID)
	assert.Equal(t, "2024-01-01T00:00:00Z", reg.DNSRecord.CreatedOn)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestCreate_CloudflareError(t *testing.T) {
	s, mock := newCloudflareService(t)

	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  []map[string]any{{"code": 81057, "message": "Record already exists."}},
		}))

	_, err := s.Create(context.Background(), "alice", testOffer)
	assert.EqualError(t, err, "Record already exists.")

	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		httpmock.NewJsonResponderOrPanic(http.StatusInternalServerError, map[string]any{"success": false}))

	_, err = s.Create(context.Background(), "alice", testOffer)
	assert.ErrorContains(t, err, "failed to create DNS record")
	assert.ErrorContains(t, err, "HTTP 500")

	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		httpmock.NewStringResponder(http.StatusBadGateway, "<html>bad gateway</html>"))

	_, err = s.Create(context.Background(), "alice", testOffer)
	assert.ErrorContains(t, err, "HTTP 502")

	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		httpmock.NewStringResponder(http.StatusForbidden, "denied"))

	_, err = s.Create(context.Background(), "alice", testOffer)
	assert.ErrorContains(t, err, "failed to create DNS record")
}

func TestCreate_CloudflareNoRetry(t *testing.T) {
	s, mock := newCloudflareService(t)

	mock.RegisterResponder(http.MethodPost, "https://cf.test/client/v4/zones/zone/dns_records",
		httpmock.NewJsonResponderOrPanic(http.StatusServiceUnavailable, map[string]any{"success": false}))

	_, err := s.Create(context.Background(), "alice", testOffer)
	require.Error(t, err)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

type stubCreator struct {
	record *DNSRecord
	name   string
}

func (c *stubCreator) createTXT(_ context.Context, name, _ string, _ int) (*DNSRecord, error) {
	c.name = name
	return c.record, nil
}

func TestCreate_RecordCreator(t *testing.T) {
	s, err := NewService(Config{Domain: "example.com"}, testLogger())
	require.NoError(t, err)
	creator := &stubCreator{record: &DNSRecord{ID: "rec-9", Type: "TXT"}}
	s.cloudflare = creator

	assert.True(t, s.Configured())
	assert.False(t, s.Simulated())

	reg, err := s.Create(context.Background(), "Bob", testOffer)
	require.NoError(t, err)
	assert.Equal(t, "bob.user._bitcoin-payment.example.com", creator.name)
	assert.Equal(t, "rec-9", reg.DNSRecord.ID)
	assert.Equal(t, "bob@example.com", reg.Username)
}

// startDNS serves TXT answers from records on a loopback UDP port.
func startDNS(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			q := r.Question[0]
			txt, ok := records[strings.ToLower(q.Name)]
			if !ok {
				m.Rcode = dns.RcodeNameError
			} else {
				m.Answer = append(m.Answer, &dns.TXT{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 3600},
					Txt: txt,
				})
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestResolve(t *testing.T) {
	addr := startDNS(t, map[string][]string{
		"alice.user._bitcoin-payment.example.com.": {"bitcoin:?lno=" + testOffer[:20], testOffer[20:]},
		"bob.user._bitcoin-payment.example.com.":   {"v=spf1 -all"},
	})

	s, err := NewService(Config{Domain: "example.com", Resolver: addr, Timeout: 2 * time.Second}, testLogger())
	require.NoError(t, err)

	offer, err := s.Resolve(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, testOffer, offer)

	_, err = s.Resolve(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Resolve(context.Background(), "carol")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Resolve(context.Background(), "not.valid")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestParsePaymentURI(t *testing.T) {
	offer, ok := parsePaymentURI(`"bitcoin:?lno=lno1abc"`)
	assert.True(t, ok)
	assert.Equal(t, "lno1abc", offer)

	offer, ok = parsePaymentURI("BITCOIN:bc1qxyz?amount=1&LNO=lno1def")
	assert.True(t, ok)
	assert.Equal(t, "lno1def", offer)

	for _, in := range []string{"", "bitcoin:", "bitcoin:?amount=1", "lightning:?lno=lno1", "bitcoin:?lno="} {
		_, ok := parsePaymentURI(in)
		assert.False(t, ok, in)
	}
}
