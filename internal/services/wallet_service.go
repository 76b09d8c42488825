package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletService is the credential store: it generates custodial key pairs
// and encrypts private keys at rest with AES-256-CBC.
//
// The cipher key is a SHA-256 digest of a configured secret, deterministic
// on purpose so that ciphertexts written before a restart stay decryptable.
// Ciphertexts carry no MAC and are therefore not tamper-evident; this
// matches the storage format already in production.
type WalletService struct {
	key []byte
}

// NewWalletService derives the 32-byte cipher key from the configured secret.
func NewWalletService(encryptSalt string) *WalletService {
	sum := sha256.Sum256([]byte(encryptSalt))
	return &WalletService{key: sum[:]}
}

// Encrypt encrypts a private key and returns "iv_hex:ciphertext_hex". A
// fresh random IV is generated per call, so encrypting the same plaintext
// twice yields different blobs.
func (s *WalletService) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. A blob missing the separator or failing hex
// decoding reports ErrMalformedCiphertext; decrypting with the wrong key
// surfaces as a padding error.
func (s *WalletService) Decrypt(blob string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(blob, ":")
	if !ok {
		return "", fmt.Errorf("missing separator: %w", ErrMalformedCiphertext)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("bad IV hex: %w", ErrMalformedCiphertext)
	}
	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("bad ciphertext hex: %w", ErrMalformedCiphertext)
	}
	if len(iv) != aes.BlockSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("bad block length: %w", ErrMalformedCiphertext)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(unpadded), nil
}

// GenerateWallet creates a fresh secp256k1 key pair and returns the
// checksummed address and the 0x-prefixed private key hex.
func (s *WalletService) GenerateWallet() (address string, privateKey string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key pair: %w", err)
	}
	address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	privateKey = hexutil.Encode(crypto.FromECDSA(key))
	return address, privateKey, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
