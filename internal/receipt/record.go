package receipt

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"packpay/internal/model"
)

// RecordSize is the fixed persisted size of an encoded receipt:
// discriminator (8) + buyer (32) + amount (8) + tag length (4) +
// tag bytes padded to MaxTagLen + timestamp (8) + bump (1).
const RecordSize = discriminatorLen + 32 + 8 + 4 + MaxTagLen + 8 + 1

const discriminatorLen = 8

// discriminator tags the record kind so the storage layer can tell receipt
// records apart from anything else sharing the keyspace.
var discriminator = func() [discriminatorLen]byte {
	sum := sha256.Sum256([]byte("record:PurchaseReceipt"))
	var d [discriminatorLen]byte
	copy(d[:], sum[:discriminatorLen])
	return d
}()

// Receipt is the committed proof of a single purchase. Immutable once
// written: there is no update or delete path.
type Receipt struct {
	Buyer          model.Key `json:"buyer"`
	Amount         uint64    `json:"amount"`
	CorrelationTag string    `json:"correlation_tag"`
	Timestamp      int64     `json:"timestamp"`
	Bump           uint8     `json:"bump"`
}

// Encode serializes the receipt into its fixed-size little-endian layout.
func (r *Receipt) Encode() ([]byte, error) {
	if len(r.CorrelationTag) > MaxTagLen {
		return nil, ErrSeedTooLong
	}

	buf := make([]byte, RecordSize)
	off := 0

	copy(buf[off:], discriminator[:])
	off += discriminatorLen

	copy(buf[off:], r.Buyer[:])
	off += 32

	binary.LittleEndian.PutUint64(buf[off:], r.Amount)
	off += 8

	binary.LittleEndian.PutUint32(buf[off:], uint32(len(r.CorrelationTag)))
	off += 4

	copy(buf[off:], r.CorrelationTag)
	off += MaxTagLen

	binary.LittleEndian.PutUint64(buf[off:], uint64(r.Timestamp))
	off += 8

	buf[off] = r.Bump

	return buf, nil
}

// Decode parses a fixed-size record produced by Encode.
func Decode(data []byte) (*Receipt, error) {
	if len(data) != RecordSize {
		return nil, fmt.Errorf("receipt record: want %d bytes, got %d", RecordSize, len(data))
	}
	if !bytes.Equal(data[:discriminatorLen], discriminator[:]) {
		return nil, fmt.Errorf("receipt record: unknown record kind")
	}

	r := &Receipt{}
	off := discriminatorLen

	copy(r.Buyer[:], data[off:])
	off += 32

	r.Amount = binary.LittleEndian.Uint64(data[off:])
	off += 8

	tagLen := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if tagLen > MaxTagLen {
		return nil, fmt.Errorf("receipt record: tag length %d exceeds %d", tagLen, MaxTagLen)
	}
	r.CorrelationTag = string(data[off : off+int(tagLen)])
	off += MaxTagLen

	r.Timestamp = int64(binary.LittleEndian.Uint64(data[off:]))
	off += 8

	r.Bump = data[off]

	return r, nil
}
