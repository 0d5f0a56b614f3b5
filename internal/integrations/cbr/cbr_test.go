package cbr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR><DT>2026-10-17T00:00:00+03:00</DT><Rate>16.50</Rate></KR>
            <KR><DT>2026-10-16T00:00:00+03:00</DT><Rate>17.00</Rate></KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseKeyRate(t *testing.T) {
	rate, err := parseKeyRate([]byte(keyRateResponse))
	require.NoError(t, err)
	assert.Equal(t, 16.5, rate)
}

func TestParseKeyRate_Errors(t *testing.T) {
	_, err := parseKeyRate([]byte("not xml <"))
	assert.Error(t, err)

	_, err = parseKeyRate([]byte(`<Envelope><Body/></Envelope>`))
	assert.EqualError(t, err, "no key rate data found in XML")
}

func TestGetKeyRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "http://web.cbr.ru/KeyRate", r.Header.Get("SOAPAction"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<fromDate>2026-09-19</fromDate>")
		w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	c := NewCBRClient(srv.URL, quietLogger())
	c.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	rate, err := c.GetKeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16.5, rate)
}

func TestGetKeyRate_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewCBRClient(srv.URL, quietLogger()).GetKeyRate(context.Background())
	assert.EqualError(t, err, "unexpected status code: 502")
}
