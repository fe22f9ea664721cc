package accumulator

import (
	"bytes"
	"errors"

	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

// Domain separation prefixes of the accumulator tree.
const (
	leafPrefix = 0
	nodePrefix = 1
	nullPrefix = 2
)

// Hash is a keccak256 digest truncated to its first 20 bytes.
type Hash = [RootLen]byte

// Keccak160 hashes the concatenation of parts and keeps the first 20 bytes.
func Keccak160(parts ...[]byte) Hash {
	var h Hash
	copy(h[:], eth_crypto.Keccak256(parts...))
	return h
}

func hashLeaf(data []byte) Hash { return Keccak160([]byte{leafPrefix}, data) }

func hashNull() Hash { return Keccak160([]byte{nullPrefix}) }

func hashNode(l, r Hash) Hash {
	if bytes.Compare(l[:], r[:]) > 0 {
		l, r = r, l
	}
	return Keccak160([]byte{nodePrefix}, l[:], r[:])
}

// MerkleTree is the off-circuit accumulator over one slot's price messages. The
// leaves are padded with null hashes up to the next power of two.
type MerkleTree struct {
	Levels [][]Hash
	Root   Hash
}

func NewMerkleTree(messages [][]byte) (*MerkleTree, error) {
	if len(messages) == 0 {
		return nil, errors.New("cannot construct Merkle tree with no data")
	}
	width := nextPowerOfTwo(len(messages))
	leaves := make([]Hash, width)
	for i := range leaves {
		if i < len(messages) {
			leaves[i] = hashLeaf(messages[i])
		} else {
			leaves[i] = hashNull()
		}
	}

	tree := &MerkleTree{}
	tree.Levels = append(tree.Levels, leaves)
	level := leaves
	for len(level) > 1 {
		next := make([]Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = hashNode(level[i], level[i+1])
		}
		tree.Levels = append(tree.Levels, next)
		level = next
	}
	tree.Root = level[0]
	return tree, nil
}

// Proof returns the sibling hashes from the leaf at index up to the root.
func (t *MerkleTree) Proof(index int) ([]Hash, error) {
	if index < 0 || index >= len(t.Levels[0]) {
		return nil, errors.New("leaf index out of range")
	}
	var siblings []Hash
	for _, level := range t.Levels[:len(t.Levels)-1] {
		siblings = append(siblings, level[index^1])
		index /= 2
	}
	return siblings, nil
}

// VerifyProof checks that message is committed to by root. Children are sorted
// before hashing, so no path bits are needed.
func VerifyProof(root Hash, message []byte, proof []Hash) bool {
	h := hashLeaf(message)
	for _, sibling := range proof {
		h = hashNode(h, sibling)
	}
	return h == root
}

func nextPowerOfTwo(n int) int {
	if n > 0 && (n&(n-1)) == 0 {
		return n
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
