package query

import (
	"encoding/base64"
	"hash/crc32"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

	tests := []struct {
		name      string
		sortValue interface{}
		expected  interface{}
	}{
		{name: "timestamp", sortValue: now, expected: now},
		{name: "string con pipes", sortValue: "a|b|c", expected: "a|b|c"},
		{name: "string vacío", sortValue: "", expected: ""},
		{name: "entero", sortValue: int64(-42), expected: int64(-42)},
		{name: "float", sortValue: 3.14159, expected: 3.14159},
		{name: "booleano", sortValue: true, expected: true},
		{name: "valor nulo (nulls last)", sortValue: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := EncodeCursor(tt.sortValue, id)
			require.NoError(t, err)

			gotValue, gotID, err := DecodeCursor(token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, gotValue)
			assert.Equal(t, id, gotID)
		})
	}
}

func TestCursor_Deterministic(t *testing.T) {
	id := uuid.New()
	t1, err := EncodeCursor("acme", id)
	require.NoError(t, err)
	t2, err := EncodeCursor("acme", id)
	require.NoError(t, err)
	assert.Equal(t, t1, t2, "codificar el mismo par debe producir el mismo token")
}

func TestCursor_NilTimePointer(t *testing.T) {
	id := uuid.New()
	var due *time.Time

	token, err := EncodeCursor(due, id)
	require.NoError(t, err)

	gotValue, gotID, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Nil(t, gotValue)
	assert.Equal(t, id, gotID)
}

func TestCursor_TruncatedToken(t *testing.T) {
	// Un token recortado un carácter debe fallar para TODOS los kinds. Sin
	// checksum, base64 sin padding absorbe los bits finales perdidos y un
	// valor string como "abc" decodificaría "bien" a "ab", reanudando el
	// recorrido desde un ancla equivocada.
	values := []interface{}{
		time.Now().UTC(),
		"abc",
		int64(12345),
		3.14159,
		true,
		nil,
	}

	for _, v := range values {
		token, err := EncodeCursor(v, uuid.New())
		require.NoError(t, err)

		_, _, err = DecodeCursor(token[:len(token)-1])
		assert.ErrorIs(t, err, ErrMalformedCursor, "valor %v", v)
	}
}

func TestCursor_TamperedPayload(t *testing.T) {
	token, err := EncodeCursor("acme", uuid.New())
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)

	// Cambiar un byte del payload invalida el checksum.
	decoded[len(decoded)-1] ^= 0x01
	_, _, err = DecodeCursor(base64.RawURLEncoding.EncodeToString(decoded))
	assert.ErrorIs(t, err, ErrMalformedCursor)
}

func TestCursor_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "no es base64", token: "%%%not-base64%%%"},
		{name: "base64 sin estructura", token: "aG9sYQ"}, // "hola"
		{name: "id inválido", token: encodeRaw(t, "s|not-a-uuid|value")},
		{name: "kind desconocido", token: encodeRaw(t, "x|"+uuid.NewString()+"|value")},
		{name: "tiempo corrupto", token: encodeRaw(t, "t|"+uuid.NewString()+"|ayer")},
		{name: "entero corrupto", token: encodeRaw(t, "i|"+uuid.NewString()+"|uno")},
		{name: "nulo con valor", token: encodeRaw(t, "n|"+uuid.NewString()+"|sobra")},
		{name: "token vacío", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeCursor(tt.token)
			assert.ErrorIs(t, err, ErrMalformedCursor)
		})
	}
}

func TestCursor_UnsupportedType(t *testing.T) {
	_, err := EncodeCursor(struct{}{}, uuid.New())
	assert.Error(t, err)
}

// encodeRaw arma un token con payload arbitrario y checksum válido, para que
// los casos malformados lleguen a la validación del payload y no mueran antes
// en la comprobación del checksum.
func encodeRaw(t *testing.T, payload string) string {
	t.Helper()
	sum := crc32.ChecksumIEEE([]byte(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(sum), 16) + "|" + payload))
}
