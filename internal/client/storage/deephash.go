package storage

import (
	"crypto/sha512"
	"strconv"
)

func sha384(parts ...[]byte) []byte {
	h := sha512.New384()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// deepHash computes the Arweave deep hash of a list of blobs.
func deepHash(chunks [][]byte) []byte {
	acc := sha384([]byte("list" + strconv.Itoa(len(chunks))))
	for _, c := range chunks {
		acc = sha384(acc, deepHashBlob(c))
	}
	return acc
}

func deepHashBlob(b []byte) []byte {
	tag := sha384([]byte("blob" + strconv.Itoa(len(b))))
	return sha384(tag, sha384(b))
}
