package cryptoutils

import (
	"fmt"
	"strings"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

const (
	pemBeginMarker = "-----BEGIN "
	pemEndMarker   = "-----END "
)

// NormalizePublicKey strips the PEM armor from a public key and collapses the
// base64 body onto one line, which is the form Snowflake accepts for RSA_PUBLIC_KEY.
//
// Everything up to and including the BEGIN line and everything from the END line
// onward is removed, so the result does not depend on the armor's exact length.
func NormalizePublicKey(armored string) (string, error) {
	begin := strings.Index(armored, pemBeginMarker)
	if begin < 0 {
		return "", fmt.Errorf("%w: missing BEGIN marker", interfaces.ErrMalformedPublicKey)
	}

	bodyStart := strings.IndexByte(armored[begin:], '\n')
	if bodyStart < 0 {
		return "", fmt.Errorf("%w: no body after BEGIN marker", interfaces.ErrMalformedPublicKey)
	}
	rest := armored[begin+bodyStart+1:]

	end := strings.Index(rest, pemEndMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: missing END marker", interfaces.ErrMalformedPublicKey)
	}

	body := strings.NewReplacer("\n", "", "\r", "").Replace(rest[:end])
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: empty body", interfaces.ErrMalformedPublicKey)
	}

	return body, nil
}
