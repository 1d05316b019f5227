package ens

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/permalink/internal/common"
)

// arweaveNS is the varint form of the arweave-ns multicodec (0xb29910).
var arweaveNS = []byte{0x90, 0xb2, 0xca, 0x05}

const arweaveIDBytes = 32

// EncodeArweaveContenthash builds the resolver contenthash value that points
// at a storage transaction id.
func EncodeArweaveContenthash(id string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not base64url", common.ErrInvalidContentID, id)
	}
	if len(raw) != arweaveIDBytes {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes", common.ErrInvalidContentID, id, len(raw))
	}

	out := make([]byte, 0, len(arweaveNS)+len(raw))
	out = append(out, arweaveNS...)
	return append(out, raw...), nil
}

// DecodeArweaveContenthash reverses EncodeArweaveContenthash.
func DecodeArweaveContenthash(b []byte) (string, error) {
	if !bytes.HasPrefix(b, arweaveNS) || len(b) != len(arweaveNS)+arweaveIDBytes {
		return "", fmt.Errorf("%w: not an arweave contenthash", common.ErrInvalidContentID)
	}
	return base64.RawURLEncoding.EncodeToString(b[len(arweaveNS):]), nil
}
