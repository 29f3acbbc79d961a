package serialization

import (
	"encoding/binary"
	"io"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// MaxVarBytesLength is the largest byte field accepted while decoding, which
// bounds the allocation a corrupted length prefix can cause.
const MaxVarBytesLength = 1 << 20

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

var errMalformed = errors.New("errMalformed")

// WriteElement writes the little endian representation of element to w.
// Byte slices are written with a uint64 length prefix.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		_, err := w.Write([]byte{e})
		return errors.WithStack(err)

	case bool:
		if e {
			return WriteElement(w, uint8(0x01))
		}
		return WriteElement(w, uint8(0x00))

	case uint32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return errors.WithStack(err)

	case uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return errors.WithStack(err)

	case int64:
		return WriteElement(w, uint64(e))

	case externalapi.DomainHash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case *externalapi.DomainHash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case externalapi.DomainTransactionID:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case []byte:
		err := WriteElement(w, uint64(len(e)))
		if err != nil {
			return err
		}
		_, err = w.Write(e)
		return errors.WithStack(err)
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = buf[0]
		return nil

	case *bool:
		var value uint8
		err := ReadElement(r, &value)
		if err != nil {
			return err
		}
		switch value {
		case 0x00:
			*e = false
		case 0x01:
			*e = true
		default:
			return errors.Wrapf(errMalformed, "in order to keep serialization canonical, true has to"+
				" always be 0x01")
		}
		return nil

	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = binary.LittleEndian.Uint32(buf[:])
		return nil

	case *uint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = binary.LittleEndian.Uint64(buf[:])
		return nil

	case *int64:
		var value uint64
		err := ReadElement(r, &value)
		if err != nil {
			return err
		}
		*e = int64(value)
		return nil

	case *externalapi.DomainHash:
		_, err := io.ReadFull(r, e[:])
		return errors.WithStack(err)

	case *externalapi.DomainTransactionID:
		_, err := io.ReadFull(r, e[:])
		return errors.WithStack(err)

	case *[]byte:
		var length uint64
		err := ReadElement(r, &length)
		if err != nil {
			return err
		}
		if length > MaxVarBytesLength {
			return errors.Wrapf(errMalformed, "byte field of length %d exceeds the maximum of %d",
				length, MaxVarBytesLength)
		}
		if length == 0 {
			*e = nil
			return nil
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return errors.WithStack(err)
		}
		*e = buf
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// IsMalformedError returns whether the error indicates a malformed data source
func IsMalformedError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) || errors.Is(err, errMalformed)
}
