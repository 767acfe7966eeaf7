package log_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dudk/asymmetry/log"
)

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	l := log.GetLogger()
	l.SetOutput(&buf)
	l.WithField("pipe", "test").Info("started")
	assert.Contains(t, buf.String(), "pipe=test")
	assert.Contains(t, buf.String(), "started")
}

func TestSilent(t *testing.T) {
	var l log.Logger = log.Silent()
	l.WithField("pipe", "test").Warn("dropped")
	assert.Equal(t, logrus.InfoLevel, log.Silent().GetLevel())
}
