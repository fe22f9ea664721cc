// Package devnet builds attestations signed by deterministic development guardians,
// and carries the mainnet vectors used throughout the tests.
package devnet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/accumulator"
)

// Mainnet vectors: a Pythnet accumulator VAA signed by 13 guardians of guardian set 3,
// its body and its oracle payload.
const (
	KnownVAAHex     = "01000000030d00d5df1d274a402c5eb4c8b60254f1d1df67c64c6afddd75ed03562aac6d4ad0714bd0874f0837683bec3357999a4c2d922f79e908c39a5a6ff4ec6e21a78956fa00021e32f66495cb657049f04b251629811395d082d4aecee8a95e447e83372a4e9443a647f44880f3da72d58dfc0f9fa963e4aac0c283342d9a91c4e19d3ca62a5b0103381bfdf0853bbf0f7b4cb4d65851ac7f60dcc9ba3d8442c95de61410cbf09ef279454fa725fd2e90697f55e065005ad64e6696c009fd1767b7bf9b79738399bf00068260c97865c386a3496aa56da2327159998ab1db26ae79010685f75518d4eecb67cda0cda4408a636301d0d376f3ff71db66f088e24d871bf8f9d75f901b84e8010743b8b7f7b4d53e5499bc0d2548a952cb2b6559da1a0583d3128d930926c6cf281ff58828c54cc9e39c774b70fb5ab7ab400eaa6356bc06700b2f744c6a13fd06010859f92b8bd6fa6cb257d5a41327b48c2ac880773eda6617f8511a8003a56fff15502b2b90f65cbe16ddfda2324e3d0b4039fba3332cde2adf48f01e46e8717839000a2fcf534a53c3e53addf02dea50a6e87b20f41922708a38768af6ad48dc53ca0f65844530c842f2746ecef4a950843e2adfdd1f8765e3a172e346a793fe136b90010bf3022b0f4927b6b701a84e949da4cfacbc8cc2e72037516c1ba12ef7a354e77c454822878d7d948e50c0e7118cfca2a4d5a33810e7c5cf63a47a0115cb3c5f98000c06c01308e45e4d95711e735ef2ef9e5eddeaf1e0a52faf28e0e9cb2b37acde794557d6ce463ac7b9c16f753ddd142f5716c64bfe3c9c01960f07d46cafd7157e010d5cd199cddb07c62c95eb3d199a324e79392562af5568a33842e23c1a0f2550a1010f6a4af293d651e13acb8a5f1967da722df8422ee871731ca0d9e0a908fc7f010ecc18446ff3bf2a129401967556df7de3bbfcc2c37d4441cde11d71b86a8128aa22e2154e4943570aed1d2aaa747ddc10729702688b70751a9d9c411b9e0271da0010922dd9890ea99eb32ffb3fe2fcda2258b875147601af4bad528edf70a33f382b79b4ef1515a7c5aa60af16a75c555d714b4ce7b31275d4b4eb427089849ff0920012997ca65ec7fcf0418fd036ddead5743206a7a350fd44602759a4bba2acfc949924244db3d12d76885c162b988135e642c1d6c27aa4ba504668c7932d37ead91b00655ccff800000000001ae101faedac5851e32b9b23b5f9411a8c2bac4aae3ed4dd7b811dd1a72ea4aa71000000000195faa401415557560000000000069b993c00002710095bb7e5fa374ea08603a6698123d99101547a50"
	KnownBodyHex    = "655ccff800000000001ae101faedac5851e32b9b23b5f9411a8c2bac4aae3ed4dd7b811dd1a72ea4aa71000000000195faa401415557560000000000069b993c00002710095bb7e5fa374ea08603a6698123d99101547a50"
	KnownPayloadHex = "415557560000000000069b993c00002710095bb7e5fa374ea08603a6698123d99101547a50"
	KnownSignatures = 13
)

// PythnetEmitter is the accumulator emitter on Pythnet (chain 26).
var PythnetEmitter = vaa.Address(common.HexToHash("e101faedac5851e32b9b23b5f9411a8c2bac4aae3ed4dd7b811dd1a72ea4aa71"))

// KnownVAA decodes KnownVAAHex.
func KnownVAA() (*vaa.VAA, error) {
	data, err := hex.DecodeString(KnownVAAHex)
	if err != nil {
		return nil, err
	}
	return vaa.Unmarshal(data)
}

// MaxGuardians is the number of distinct one-byte guardian indices.
const MaxGuardians = 256

// GuardianKeys derives n deterministic guardian keys. They are for local
// development only.
func GuardianKeys(n int) ([]*ecdsa.PrivateKey, error) {
	if n < 0 || n > MaxGuardians {
		return nil, fmt.Errorf("guardian count %d out of range [0, %d]", n, MaxGuardians)
	}
	keys := make([]*ecdsa.PrivateKey, n)
	for i := range keys {
		seed := eth_crypto.Keccak256([]byte(fmt.Sprintf("zklink-oracle devnet guardian %d", i)))
		k, err := eth_crypto.ToECDSA(seed)
		if err != nil {
			return nil, fmt.Errorf("guardian key %d: %w", i, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// GuardianAddresses returns the addresses of keys, in order.
func GuardianAddresses(keys []*ecdsa.PrivateKey) []common.Address {
	addrs := make([]common.Address, len(keys))
	for i, k := range keys {
		addrs[i] = eth_crypto.PubkeyToAddress(k.PublicKey)
	}
	return addrs
}

// Attestation describes a devnet accumulator VAA.
type Attestation struct {
	Slot      uint64
	RingSize  uint32
	Messages  [][]byte
	Sequence  uint64
	Timestamp time.Time
}

// NewSignedVAA builds the accumulator VAA described by a and has every key sign it,
// guardian i signing with index i.
func NewSignedVAA(a Attestation, keys []*ecdsa.PrivateKey) (*vaa.VAA, error) {
	if len(keys) > MaxGuardians {
		return nil, fmt.Errorf("%d guardian keys, at most %d can be indexed", len(keys), MaxGuardians)
	}
	tree, err := accumulator.NewMerkleTree(a.Messages)
	if err != nil {
		return nil, err
	}
	payload, err := accumulator.NewMerkleMessage(a.Slot, a.RingSize, tree.Root).Marshal()
	if err != nil {
		return nil, err
	}

	v := &vaa.VAA{
		Version:          vaa.SupportedVAAVersion,
		GuardianSetIndex: 0,
		Timestamp:        a.Timestamp,
		Nonce:            0,
		Sequence:         a.Sequence,
		ConsistencyLevel: 1,
		EmitterChain:     vaa.ChainIDPythNet,
		EmitterAddress:   PythnetEmitter,
		Payload:          payload,
	}
	for i, k := range keys {
		v.AddSignature(k, uint8(i))
	}
	return v, nil
}
