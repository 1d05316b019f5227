package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dmitrijs2005/permalink/internal/common"
)

// sigTypeEthereum marks a secp256k1 signature over an EIP-191 message.
const sigTypeEthereum uint16 = 3

const (
	ethSigLength   = 65
	ethOwnerLength = 65
	anchorLength   = 32
	targetLength   = 32
)

var ErrMalformedDataItem = errors.New("malformed data item")

// MessageSigner is the part of a wallet needed to sign data items.
type MessageSigner interface {
	PublicKey() []byte
	SignMessage(msg []byte) ([]byte, error)
}

// DataItem is a signed ANS-104 bundle entry.
type DataItem struct {
	Signature []byte
	Owner     []byte
	Target    []byte
	Anchor    []byte
	Tags      []Tag
	Data      []byte
}

// NewDataItem prepares an unsigned item with a random anchor.
func NewDataItem(data []byte, tags []Tag) *DataItem {
	return &DataItem{
		Anchor: common.GenerateRandByteArray(anchorLength),
		Tags:   tags,
		Data:   data,
	}
}

func (d *DataItem) signingHash() []byte {
	return deepHash([][]byte{
		[]byte("dataitem"),
		[]byte("1"),
		[]byte(strconv.Itoa(int(sigTypeEthereum))),
		d.Owner,
		d.Target,
		d.Anchor,
		encodeTags(d.Tags),
		d.Data,
	})
}

// Sign sets the owner to the signer's key and signs the item.
func (d *DataItem) Sign(s MessageSigner) error {
	if err := validateTags(d.Tags); err != nil {
		return err
	}

	owner := s.PublicKey()
	if len(owner) != ethOwnerLength {
		return fmt.Errorf("%w: owner key must be %d bytes", ErrMalformedDataItem, ethOwnerLength)
	}
	d.Owner = owner

	sig, err := s.SignMessage(d.signingHash())
	if err != nil {
		return fmt.Errorf("sign data item: %w", err)
	}
	if len(sig) != ethSigLength {
		return fmt.Errorf("%w: signature must be %d bytes", ErrMalformedDataItem, ethSigLength)
	}
	d.Signature = sig
	return nil
}

// ID is the content id the network assigns to the item.
func (d *DataItem) ID() string {
	sum := sha256.Sum256(d.Signature)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Verify checks that the signature was produced by Owner.
func (d *DataItem) Verify() error {
	if len(d.Signature) != ethSigLength {
		return ErrMalformedDataItem
	}

	sig := append([]byte(nil), d.Signature...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.Ecrecover(accounts.TextHash(d.signingHash()), sig)
	if err != nil {
		return fmt.Errorf("recover signer: %w", err)
	}
	if !bytes.Equal(pub, d.Owner) {
		return errors.New("data item signature does not match owner")
	}
	return nil
}

// Bytes serializes a signed item.
func (d *DataItem) Bytes() ([]byte, error) {
	if len(d.Signature) != ethSigLength || len(d.Owner) != ethOwnerLength {
		return nil, fmt.Errorf("%w: item is not signed", ErrMalformedDataItem)
	}

	tags := encodeTags(d.Tags)

	var buf bytes.Buffer
	buf.Grow(2 + ethSigLength + ethOwnerLength + 2 + anchorLength + 16 + len(tags) + len(d.Data))

	_ = binary.Write(&buf, binary.LittleEndian, sigTypeEthereum)
	buf.Write(d.Signature)
	buf.Write(d.Owner)
	writeOptional(&buf, d.Target)
	writeOptional(&buf, d.Anchor)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(d.Tags)))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(tags)))
	buf.Write(tags)
	buf.Write(d.Data)

	return buf.Bytes(), nil
}

func writeOptional(buf *bytes.Buffer, field []byte) {
	if len(field) == 0 {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	buf.Write(field)
}

// ParseDataItem decodes an Ethereum-signed item produced by Bytes.
func ParseDataItem(b []byte) (*DataItem, error) {
	r := bytes.NewReader(b)

	var sigType uint16
	if err := binary.Read(r, binary.LittleEndian, &sigType); err != nil {
		return nil, ErrMalformedDataItem
	}
	if sigType != sigTypeEthereum {
		return nil, fmt.Errorf("%w: unsupported signature type %d", ErrMalformedDataItem, sigType)
	}

	d := &DataItem{
		Signature: make([]byte, ethSigLength),
		Owner:     make([]byte, ethOwnerLength),
	}
	if _, err := io.ReadFull(r, d.Signature); err != nil {
		return nil, ErrMalformedDataItem
	}
	if _, err := io.ReadFull(r, d.Owner); err != nil {
		return nil, ErrMalformedDataItem
	}

	var err error
	if d.Target, err = readOptional(r, targetLength); err != nil {
		return nil, err
	}
	if d.Anchor, err = readOptional(r, anchorLength); err != nil {
		return nil, err
	}

	var tagCount, tagBytes uint64
	if err := binary.Read(r, binary.LittleEndian, &tagCount); err != nil {
		return nil, ErrMalformedDataItem
	}
	if err := binary.Read(r, binary.LittleEndian, &tagBytes); err != nil {
		return nil, ErrMalformedDataItem
	}
	if tagBytes > uint64(r.Len()) {
		return nil, ErrMalformedDataItem
	}

	raw := make([]byte, tagBytes)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, ErrMalformedDataItem
	}
	if d.Tags, err = decodeTags(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataItem, err)
	}
	if uint64(len(d.Tags)) != tagCount {
		return nil, fmt.Errorf("%w: tag count mismatch", ErrMalformedDataItem)
	}

	d.Data = make([]byte, r.Len())
	_, _ = r.Read(d.Data)
	return d, nil
}

func readOptional(r *bytes.Reader, size int) ([]byte, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return nil, ErrMalformedDataItem
	}
	switch flag {
	case 0:
		return nil, nil
	case 1:
		out := make([]byte, size)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, ErrMalformedDataItem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: presence byte %d", ErrMalformedDataItem, flag)
	}
}
