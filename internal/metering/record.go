package metering

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// SignInData describes a verified sign-in for analytics.
type SignInData struct {
	// Address is the wallet address that signed the message
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
	Domain  string `json:"domain"`
	URI     string `json:"uri"`

	// RequestID is the message's Request ID, if any
	RequestID string `json:"request_id,omitempty"`

	// Additional context for future extensibility
	Extra map[string]interface{} `json:"extra,omitempty"`
}

var logger logrus.FieldLogger = logrus.StandardLogger().WithField("metering", true)

// RecordSignIn emits one structured sign-in event. Only successful
// verifications should be recorded.
func RecordSignIn(data *SignInData) {
	fields := logrus.Fields{
		"action":       "login",
		"login_method": "web3",
		"web3_chain":   "ethereum",
	}

	if data != nil {
		if data.ChainID != 0 {
			fields["web3_network"] = strconv.FormatInt(data.ChainID, 10)
		}
		if data.Address != "" {
			fields["web3_address"] = data.Address
		}
		if data.Domain != "" {
			fields["web3_domain"] = data.Domain
		}
		if data.URI != "" {
			fields["web3_uri"] = data.URI
		}
		if data.RequestID != "" {
			fields["request_id"] = data.RequestID
		}

		for key, value := range data.Extra {
			fields[key] = value
		}
	}

	logger.WithFields(fields).Info("Login")
}
