package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenBytes is the amount of entropy behind every token.
const TokenBytes = 32

// Token returns TokenBytes of crypto/rand output encoded as unpadded
// url-safe base64, ready to be placed in a link.
func Token() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random.Token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
