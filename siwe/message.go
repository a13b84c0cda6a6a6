package siwe

import (
	"strconv"
	"strings"
)

const headerSuffix = " wants you to sign in with your Ethereum account:"

const (
	labelURI            = "URI"
	labelVersion        = "Version"
	labelChainID        = "Chain ID"
	labelNonce          = "Nonce"
	labelIssuedAt       = "Issued At"
	labelExpirationTime = "Expiration Time"
	labelNotBefore      = "Not Before"
	labelRequestID      = "Request ID"
	labelResources      = "Resources:"
	resourcePrefix      = "- "
)

// Create renders p as the canonical EIP-4361 text. The output is a pure
// function of p, so the same params always produce the same bytes.
func Create(p *Params, opts ...Option) string {
	o := newOptions(opts)
	f := &p.f

	var sb strings.Builder

	if f.Scheme != "" {
		sb.WriteString(f.Scheme)
		sb.WriteString("://")
	}
	sb.WriteString(f.Domain)
	sb.WriteString(headerSuffix)
	sb.WriteString("\n")
	sb.WriteString(f.Address)
	sb.WriteString("\n\n")

	if f.Statement != "" {
		sb.WriteString(f.Statement)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	writeField(&sb, labelURI, f.URI)
	sb.WriteString("\n")
	writeField(&sb, labelVersion, f.Version)
	sb.WriteString("\n")
	writeField(&sb, labelChainID, strconv.FormatInt(f.ChainID, 10))
	sb.WriteString("\n")
	writeField(&sb, labelNonce, f.Nonce)
	sb.WriteString("\n")
	writeField(&sb, labelIssuedAt, o.timestamps.Format(f.IssuedAt))

	if f.ExpirationTime != nil {
		sb.WriteString("\n")
		writeField(&sb, labelExpirationTime, o.timestamps.Format(*f.ExpirationTime))
	}
	if f.NotBefore != nil {
		sb.WriteString("\n")
		writeField(&sb, labelNotBefore, o.timestamps.Format(*f.NotBefore))
	}
	if f.RequestID != "" {
		sb.WriteString("\n")
		writeField(&sb, labelRequestID, f.RequestID)
	}
	if len(f.Resources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(labelResources)
		for _, r := range f.Resources {
			sb.WriteString("\n")
			sb.WriteString(resourcePrefix)
			sb.WriteString(r)
		}
	}

	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
}
