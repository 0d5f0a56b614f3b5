package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type countingSender struct {
	calls chan struct{}
}

func (c *countingSender) SendHealthDigests(context.Context) (int, error) {
	c.calls <- struct{}{}
	return 1, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAddHealthDigest_InvalidSpec(t *testing.T) {
	s := New(quietLogger())
	err := s.AddHealthDigest("every monday", &countingSender{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Jobs())
}

func TestAddHealthDigest_Runs(t *testing.T) {
	s := New(quietLogger())
	sender := &countingSender{calls: make(chan struct{}, 1)}

	// the standard parser is minute-granular; "@every" fires sooner for the test
	assert.NoError(t, s.AddHealthDigest("@every 1s", sender))
	assert.Equal(t, 1, s.Jobs())

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-sender.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("digest job did not run")
	}
}
