package cryptox

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dmitrijs2005/permalink/internal/common"
)

const keyFileVersion = 1

type keyFile struct {
	Version int    `json:"version"`
	Address string `json:"address"`
	Sealed
}

// PassphraseFunc supplies the passphrase when a key file turns out to be
// encrypted.
type PassphraseFunc func() ([]byte, error)

// WriteKeyFile stores key at path encrypted under passphrase.
func WriteKeyFile(path string, key *ecdsa.PrivateKey, passphrase []byte) error {
	raw := crypto.FromECDSA(key)
	defer common.WipeByteArray(raw)

	sealed, err := Seal(raw, passphrase)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(keyFile{
		Version: keyFileVersion,
		Address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Sealed:  *sealed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// ReadKeyFile loads a private key. Files holding a bare hex key are read
// as is; encrypted files are opened with the passphrase from prompt.
func ReadKeyFile(path string, prompt PassphraseFunc) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if key, ok := parseHexKey(string(data)); ok {
		return key, nil
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("key file %s is neither a hex key nor an encrypted key file", path)
	}
	if kf.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", kf.Version)
	}

	passphrase, err := prompt()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(passphrase)

	raw, err := Open(&kf.Sealed, passphrase)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	return key, nil
}

// ParseHexKey decodes a 32-byte hex private key with an optional 0x prefix.
func ParseHexKey(s string) (*ecdsa.PrivateKey, error) {
	key, ok := parseHexKey(s)
	if !ok {
		return nil, fmt.Errorf("%w: expected 64 hex characters", common.ErrInvalidArgument)
	}
	return key, nil
}

func parseHexKey(s string) (*ecdsa.PrivateKey, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 64 {
		return nil, false
	}
	if _, err := hex.DecodeString(s); err != nil {
		return nil, false
	}

	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, false
	}
	return key, true
}
