package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a "kind:digest" key from the model hash and the render
// options that affect the cached bytes.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", kind, Hash(data))
}

// Hash returns the hex SHA-256 digest of data. The pipeline hashes the
// canonical model JSON with it to identify a chart's input.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
