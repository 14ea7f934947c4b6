// server/internal/api/handlers/patch.go
package handlers

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// applyJSONPatch áp dụng một chuỗi thao tác RFC 6902 lên document.
// Toàn bộ chuỗi được áp dụng in-memory trước khi caller persist: một
// thao tác không hợp lệ (hoặc một op "test" fail) hủy cả patch, document
// gốc không bị đụng tới.
func applyJSONPatch[T any](doc T, patchBody []byte) (T, error) {
	var out T

	patch, err := jsonpatch.DecodePatch(patchBody)
	if err != nil {
		return out, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}

	applied, err := patch.Apply(raw)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(applied, &out); err != nil {
		return out, err
	}
	return out, nil
}
