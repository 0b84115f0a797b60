package codec

import (
	"bytes"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/spokenlab/textgrid/core/model"
)

// Fingerprint computes a BLAKE3 content hash of g's canonical binary
// encoding. Two documents fingerprint identically exactly when their binary
// serializations are byte-equal, which makes the hash stable across the text
// formats' whitespace and number-formatting freedom.
func Fingerprint(g *model.TextGrid) (string, error) {
	var buf bytes.Buffer
	if err := (Binary{}).Encode(&buf, g); err != nil {
		return "", err
	}
	h := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(h[:]), nil
}
