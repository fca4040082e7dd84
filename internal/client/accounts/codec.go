package accounts

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/cryptox"
)

// Codec turns the account collection into the single string kept in storage.
type Codec interface {
	Encode(records []Record) (string, error)
	Decode(data string) ([]Record, error)
}

// JSONCodec stores the collection as a plain JSON array.
type JSONCodec struct{}

func (JSONCodec) Encode(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONCodec) Decode(data string) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, err
	}
	return records, nil
}

const (
	sealedPrefix   = "sealed.v1:"
	sealedSaltSize = 16
)

var errNotSealed = errors.New("collection is not sealed")

// SealedCodec encrypts the JSON array with AES-GCM under a key derived from a
// passphrase with Argon2id. The salt travels with the blob:
//
//	sealed.v1:<base64(salt | nonce | ciphertext)>
type SealedCodec struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

func NewSealedCodec(passphrase string) *SealedCodec {
	return &SealedCodec{passphrase: []byte(passphrase)}
}

// keyFor derives (or reuses) the key for salt. A nil salt reuses the last key
// or starts a fresh salt.
func (c *SealedCodec) keyFor(salt []byte) ([]byte, []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if salt == nil {
		if c.key != nil {
			return c.salt, c.key
		}
		salt = common.GenerateRandByteArray(sealedSaltSize)
	}
	if c.key != nil && bytes.Equal(salt, c.salt) {
		return c.salt, c.key
	}

	c.salt = salt
	c.key = cryptox.DeriveMasterKey(c.passphrase, salt)
	return c.salt, c.key
}

func (c *SealedCodec) Encode(records []Record) (string, error) {
	plain, err := JSONCodec{}.Encode(records)
	if err != nil {
		return "", err
	}

	salt, key := c.keyFor(nil)
	sealed, err := cryptox.Seal([]byte(plain), key)
	if err != nil {
		return "", err
	}

	blob := append(append([]byte(nil), salt...), sealed...)
	return sealedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

func (c *SealedCodec) Decode(data string) ([]Record, error) {
	encoded, ok := strings.CutPrefix(data, sealedPrefix)
	if !ok {
		return nil, errNotSealed
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(blob) < sealedSaltSize {
		return nil, cryptox.ErrCiphertextTooShort
	}

	_, key := c.keyFor(blob[:sealedSaltSize])
	plain, err := cryptox.Open(blob[sealedSaltSize:], key)
	if err != nil {
		return nil, err
	}
	return JSONCodec{}.Decode(string(plain))
}
