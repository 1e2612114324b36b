package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// hashKey generates "prefix:sha256(json(parts))". Parts must be
// JSON-encodable; callers map NaN to 0 before building key options.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(fmt.Sprint(parts...))
	}
	hash := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(hash[:])
}

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// KeyType returns the kind segment of a key ("layout", "artifact", "http"),
// skipping any scope prefix added by a [ScopedKeyer].
func KeyType(key string) string {
	kinds := []string{"layout", "artifact", "http"}
	for _, kind := range kinds {
		if strings.HasPrefix(key, kind+":") {
			return kind
		}
	}
	for _, kind := range kinds {
		if strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "unknown"
}
