// Package record implements the fixed on-disk row format: a 32-bit key,
// a username of at most 32 bytes and an email of at most 255 bytes,
// each padded to a fixed width. Offsets are computed once as package
// constants, pinned to these three fields rather than an open schema —
// this engine has exactly one record shape.
package record

import (
	"encoding/binary"
	"fmt"
)

const (
	// UsernameMaxLen is the maximum encodable username length in bytes.
	UsernameMaxLen = 32
	// EmailMaxLen is the maximum encodable email length in bytes.
	EmailMaxLen = 255

	keySize      = 4
	usernameSize = UsernameMaxLen
	emailSize    = EmailMaxLen

	keyOffset      = 0
	usernameOffset = keyOffset + keySize
	emailOffset    = usernameOffset + usernameSize

	// Size is the total encoded size of a Record in bytes.
	Size = emailOffset + emailSize
)

// Record is a single row: a unique key plus a username and email.
type Record struct {
	Key      uint32
	Username string
	Email    string
}

// Encode writes r into dst at the fixed intra-record offsets. dst must
// be exactly Size bytes. Username/email longer than their maximum are
// rejected; shorter values are zero-padded.
func Encode(r Record, dst []byte) error {
	if len(dst) != Size {
		return fmt.Errorf("record: Encode: dst length %d, want %d", len(dst), Size)
	}
	if len(r.Username) > UsernameMaxLen {
		return fmt.Errorf("record: username %q exceeds %d bytes", r.Username, UsernameMaxLen)
	}
	if len(r.Email) > EmailMaxLen {
		return fmt.Errorf("record: email %q exceeds %d bytes", r.Email, EmailMaxLen)
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[keyOffset:keyOffset+keySize], r.Key)
	copy(dst[usernameOffset:usernameOffset+usernameSize], r.Username)
	copy(dst[emailOffset:emailOffset+emailSize], r.Email)
	return nil
}

// Decode is the reverse of Encode. src must be exactly Size bytes.
func Decode(src []byte) (Record, error) {
	if len(src) != Size {
		return Record{}, fmt.Errorf("record: Decode: src length %d, want %d", len(src), Size)
	}
	key := binary.LittleEndian.Uint32(src[keyOffset : keyOffset+keySize])
	username := trimPadding(src[usernameOffset : usernameOffset+usernameSize])
	email := trimPadding(src[emailOffset : emailOffset+emailSize])
	return Record{Key: key, Username: username, Email: email}, nil
}

func trimPadding(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
