package observability

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldsHook(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.AddHook(&defaultFieldsHook{fields: logrus.Fields{
		"service": "siwe",
		"region":  "eu",
	}})

	logger.WithField("region", "us").Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "siwe", entry.Data["service"])
	assert.Equal(t, "us", entry.Data["region"], "explicit fields take precedence")
}

func TestObtainMetricCounter(t *testing.T) {
	assert.NotPanics(t, func() {
		counter := ObtainMetricCounter("siwe_test_counter", "Test counter")
		assert.NotNil(t, counter)
	})
}
