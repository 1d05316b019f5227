package ens

import (
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/dmitrijs2005/permalink/internal/common"
)

func keccak(parts ...[]byte) ethcommon.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out ethcommon.Hash
	h.Sum(out[:0])
	return out
}

// Normalize trims, lower-cases and drops one trailing dot.
func Normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// IsSupported reports whether name is a .eth name with at least two
// non-empty labels after normalization.
func IsSupported(name string) bool {
	n := Normalize(name)
	if !strings.HasSuffix(n, common.NameSuffix) {
		return false
	}

	labels := strings.Split(n, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}

func LabelHash(label string) ethcommon.Hash {
	return keccak([]byte(label))
}

// NameHash implements the recursive node derivation of EIP-137.
func NameHash(name string) ethcommon.Hash {
	var node ethcommon.Hash
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		l := LabelHash(labels[i])
		node = keccak(node[:], l[:])
	}
	return node
}
