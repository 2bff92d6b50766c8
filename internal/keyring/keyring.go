package keyring

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	KeystoreFile = "keystore"
	seedLength   = 32
)

type keystore struct {
	Seed hexutil.Bytes `json:"seed"`
}

// KeyManager holds count keys derived from a single HD seed, child i of the master key being
// the i-th key.
type KeyManager struct {
	keys      []*ecdsa.PrivateKey
	addresses []common.Address
}

// NewKeyManager loads the seed from the keystore file in workdir, creating the file when it is
// missing. A new seed is taken from mnemonic when it is set, otherwise it is random. An empty
// workdir gives an ephemeral random seed.
func NewKeyManager(count int, workdir string, mnemonic string) (*KeyManager, error) {
	if workdir == "" {
		seed, err := newSeed(mnemonic)
		if err != nil {
			return nil, err
		}
		return NewKeyManagerFromSeed(seed, count)
	}

	path := filepath.Join(workdir, KeystoreFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var ks keystore
		if err := json.Unmarshal(data, &ks); err != nil {
			return nil, fmt.Errorf("failed to decode keystore %s: %w", path, err)
		}
		return NewKeyManagerFromSeed(ks.Seed, count)
	case errors.Is(err, os.ErrNotExist):
		seed, err := newSeed(mnemonic)
		if err != nil {
			return nil, err
		}
		if err := writeKeystore(workdir, path, seed); err != nil {
			return nil, err
		}
		return NewKeyManagerFromSeed(seed, count)
	default:
		return nil, fmt.Errorf("failed to read keystore %s: %w", path, err)
	}
}

func NewKeyManagerFromSeed(seed []byte, count int) (*KeyManager, error) {
	if count < 1 {
		return nil, fmt.Errorf("key count must be positive, got %d", count)
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	km := &KeyManager{
		keys:      make([]*ecdsa.PrivateKey, 0, count),
		addresses: make([]common.Address, 0, count),
	}
	for i := 0; i < count; i++ {
		child, err := master.Derive(uint32(i))
		if err != nil {
			return nil, fmt.Errorf("failed to derive key %d: %w", i, err)
		}
		priv, err := child.ECPrivKey()
		if err != nil {
			return nil, fmt.Errorf("failed to get private key %d: %w", i, err)
		}
		key := priv.ToECDSA()
		km.keys = append(km.keys, key)
		km.addresses = append(km.addresses, crypto.PubkeyToAddress(key.PublicKey))
	}
	return km, nil
}

// Address returns the address of the key at index, or the zero address if there is none.
func (km *KeyManager) Address(index int) common.Address {
	if index < 0 || index >= len(km.addresses) {
		return common.Address{}
	}
	return km.addresses[index]
}

func (km *KeyManager) IsSigner(address common.Address) bool {
	return km.indexOf(address) >= 0
}

func (km *KeyManager) SignTransaction(address common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	i := km.indexOf(address)
	if i < 0 {
		return nil, fmt.Errorf("can't sign: signer %s does not exist", address)
	}
	return types.SignTx(tx, types.NewEIP155Signer(chainID), km.keys[i])
}

func (km *KeyManager) indexOf(address common.Address) int {
	for i, a := range km.addresses {
		if a == address {
			return i
		}
	}
	return -1
}

func newSeed(mnemonic string) ([]byte, error) {
	if mnemonic != "" {
		seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
		if err != nil {
			return nil, fmt.Errorf("invalid mnemonic: %w", err)
		}
		return seed, nil
	}

	seed := make([]byte, seedLength)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate seed: %w", err)
	}
	return seed, nil
}

func writeKeystore(workdir, path string, seed []byte) error {
	if err := os.MkdirAll(workdir, 0o700); err != nil {
		return fmt.Errorf("failed to create keystore dir %s: %w", workdir, err)
	}
	data, err := json.Marshal(keystore{Seed: seed})
	if err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keystore %s: %w", path, err)
	}
	return nil
}
