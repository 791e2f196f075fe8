package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Record{Key: 42, Username: "alice", Email: "alice@example.com"}
	buf := make([]byte, Size)
	require.NoError(t, Encode(in, buf))

	out, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeExactWidths(t *testing.T) {
	username := make([]byte, UsernameMaxLen)
	for i := range username {
		username[i] = 'u'
	}
	email := make([]byte, EmailMaxLen)
	for i := range email {
		email[i] = 'e'
	}
	in := Record{Key: 1, Username: string(username), Email: string(email)}
	buf := make([]byte, Size)
	require.NoError(t, Encode(in, buf))

	out, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeRejectsOverlongFields(t *testing.T) {
	buf := make([]byte, Size)

	tooLongUsername := Record{Key: 1, Username: string(make([]byte, UsernameMaxLen+1))}
	assert.Error(t, Encode(tooLongUsername, buf))

	tooLongEmail := Record{Key: 1, Email: string(make([]byte, EmailMaxLen+1))}
	assert.Error(t, Encode(tooLongEmail, buf))
}

func TestEncodeRejectsWrongDstLength(t *testing.T) {
	assert.Error(t, Encode(Record{}, make([]byte, Size-1)))
}

func TestDecodeRejectsWrongSrcLength(t *testing.T) {
	_, err := Decode(make([]byte, Size-1))
	assert.Error(t, err)
}

func TestEncodeZeroPadsShorterValues(t *testing.T) {
	in := Record{Key: 7, Username: "bob", Email: "bob@x.io"}
	buf := make([]byte, Size)
	require.NoError(t, Encode(in, buf))

	// Bytes beyond the written username/email must be zero.
	assert.Equal(t, byte(0), buf[usernameOffset+len("bob")])
	assert.Equal(t, byte(0), buf[emailOffset+len("bob@x.io")])
}

func TestSizeMatchesCanonicalLayout(t *testing.T) {
	assert.Equal(t, 291, Size)
}
