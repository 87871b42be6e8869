package hash

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"

	"github.com/zeebo/blake3"
)

const DigestLengthBytes = 32

// BytesWithDomain is a pair of domain tag and raw bytes, the unit of input
// to the hash state.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriterToWithDomain represents a type writing itself, and knowing how to
// label itself with a domain separation tag.
type WriterToWithDomain interface {
	io.WriterTo
	// Domain returns a string uniquely identifying the type.
	Domain() string
}

// Hash is the domain-separated hash used for key identifiers and test
// transcripts. Internally a blake3 hasher with extendable output.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash initialized with "PHE-BLAKE" and any initial data.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	_, _ = hash.h.WriteString("PHE-BLAKE")
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function:
// essentially an unbounded stream of pseudorandom bytes determined by the
// state so far.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes from the current state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny consumes []byte, *big.Int, WriterToWithDomain, or any
// encoding.BinaryMarshaler, applying domain separation per value.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten BytesWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			if t == nil {
				return errors.New("hash.WriteAny: nil []byte")
			}
			toBeWritten = BytesWithDomain{"[]byte", t}
		case *big.Int:
			if t == nil {
				return errors.New("hash.WriteAny: nil *big.Int")
			}
			b, _ := t.GobEncode()
			toBeWritten = BytesWithDomain{"big.Int", b}
		case WriterToWithDomain:
			buf := new(bytes.Buffer)
			if _, err := t.WriteTo(buf); err != nil {
				return fmt.Errorf("hash.WriteAny: %s: %w", reflect.TypeOf(t).String(), err)
			}
			toBeWritten = BytesWithDomain{t.Domain(), buf.Bytes()}
		case encoding.BinaryMarshaler:
			b, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.WriteAny: %s: %w", reflect.TypeOf(t).String(), err)
			}
			toBeWritten = BytesWithDomain{reflect.TypeOf(t).String(), b}
		default:
			return fmt.Errorf("hash.WriteAny: invalid type provided as input")
		}

		hash.writeBytesWithDomain(toBeWritten)
	}
	return nil
}

func (hash *Hash) writeBytesWithDomain(toBeWritten BytesWithDomain) {
	var sizeBuf [8]byte

	// Write out `(<domain_size><domain><data_size><data>)`, so that each
	// domain separated piece of data is distinguished from others.

	_, _ = hash.h.WriteString("(")
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.TheDomain)))
	_, _ = hash.h.Write(sizeBuf[:])
	_, _ = hash.h.WriteString(toBeWritten.TheDomain)
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.Bytes)))
	_, _ = hash.h.Write(sizeBuf[:])
	_, _ = hash.h.Write(toBeWritten.Bytes)
	_, _ = hash.h.WriteString(")")
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork clones this hash, and then writes some data.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	newHash := hash.Clone()
	_ = newHash.WriteAny(data...)
	return newHash
}
