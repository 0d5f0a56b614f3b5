// Package insights talks to the external narrative service that turns computed
// health metrics into prose.
package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/models"
)

// ErrNarrativeUnavailable wraps every failure of the narrative service.
var ErrNarrativeUnavailable = errors.New("narrative unavailable")

type narrateRequest struct {
	Metrics    models.HealthMetrics `json:"metrics"`
	FinalScore float64              `json:"final_score"`
	Status     health.Status        `json:"status"`
}

// Client calls the narrative service over HTTP.
type Client struct {
	url     string
	apiKey  string
	timeout time.Duration
	http    *fasthttp.Client
	log     *logrus.Logger
}

// NewClient creates a narrative client. An empty url yields a client that
// always reports ErrNarrativeUnavailable.
func NewClient(url, apiKey string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "payfirst",
			MaxConnsPerHost:     32,
			MaxIdleConnDuration: time.Minute,
		},
		log: log,
	}
}

// Narrate requests a narrative for res.
func (c *Client) Narrate(ctx context.Context, res health.Result) (models.Narrative, error) {
	if c.url == "" {
		return models.Narrative{}, fmt.Errorf("%w: service not configured", ErrNarrativeUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return models.Narrative{}, fmt.Errorf("%w: %v", ErrNarrativeUnavailable, err)
	}

	body, err := json.Marshal(narrateRequest{
		Metrics:    models.NewHealthMetrics(res.Metrics),
		FinalScore: res.FinalScore,
		Status:     res.Status,
	})
	if err != nil {
		return models.Narrative{}, fmt.Errorf("%w: encode request: %v", ErrNarrativeUnavailable, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.SetBody(body)

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return models.Narrative{}, fmt.Errorf("%w: %v", ErrNarrativeUnavailable, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return models.Narrative{}, fmt.Errorf("%w: unexpected status code: %d", ErrNarrativeUnavailable, resp.StatusCode())
	}

	var n models.Narrative
	if err := json.Unmarshal(resp.Body(), &n); err != nil {
		return models.Narrative{}, fmt.Errorf("%w: decode response: %v", ErrNarrativeUnavailable, err)
	}
	if n.Summary == "" {
		return models.Narrative{}, fmt.Errorf("%w: empty summary", ErrNarrativeUnavailable)
	}
	normalize(&n)

	c.log.Debugf("Narrative generated for status %s", res.Status)
	return n, nil
}

// deadline is the earlier of the context deadline and the client timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func normalize(n *models.Narrative) {
	if n.Strengths == nil {
		n.Strengths = []string{}
	}
	if n.Risks == nil {
		n.Risks = []string{}
	}
	if n.Recommendations == nil {
		n.Recommendations = []string{}
	}
}
