package metering

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSignIn(t *testing.T) {
	l, hook := logrustest.NewNullLogger()
	original := logger
	logger = l.WithField("metering", true)
	t.Cleanup(func() { logger = original })

	RecordSignIn(&SignInData{
		Address: "0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E",
		ChainID: 1,
		Domain:  "example.com",
		URI:     "https://example.com",
		Extra:   map[string]interface{}{"cli": true},
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Login", entry.Message)
	assert.Equal(t, true, entry.Data["metering"])
	assert.Equal(t, "web3", entry.Data["login_method"])
	assert.Equal(t, "1", entry.Data["web3_network"])
	assert.Equal(t, "0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E", entry.Data["web3_address"])
	assert.Equal(t, "example.com", entry.Data["web3_domain"])
	assert.Equal(t, true, entry.Data["cli"])
	assert.NotContains(t, entry.Data, "request_id")
}

func TestRecordSignInNilData(t *testing.T) {
	l, hook := logrustest.NewNullLogger()
	original := logger
	logger = l
	t.Cleanup(func() { logger = original })

	RecordSignIn(nil)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "login", hook.LastEntry().Data["action"])
}
