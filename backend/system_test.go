package backend

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/field"
)

var testLog = zerolog.New(io.Discard)

func TestProveVerifyRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	cs := tinyCircuit().Finalize()
	sys, err := NewSystem(cs, testLog)
	assert.NoError(t, err)
	keys, err := sys.Setup()
	assert.NoError(t, err)

	asn, err := cs.Solve([]fr.Element{field.FromUint64(6)}, []fr.Element{field.FromUint64(7)})
	assert.NoError(t, err)
	proof, err := sys.Prove(keys, asn)
	assert.NoError(t, err)

	public := asn.PublicVector()
	assert.NoError(t, sys.Verify(keys.VK, proof, public))

	// a tampered public vector must not verify
	bad := append([]fr.Element(nil), public...)
	bad[1] = field.FromUint64(43)
	err = sys.Verify(keys.VK, proof, bad)
	assert.True(t, errors.Is(err, ErrProofVerification))

	// wrong shape is rejected before the pairing check
	err = sys.Verify(keys.VK, proof, public[:1])
	assert.Error(t, err)
}

func TestKeySerializationRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	cs := tinyCircuit().Finalize()
	sys, err := NewSystem(cs, testLog)
	assert.NoError(t, err)
	keys, err := sys.Setup()
	assert.NoError(t, err)

	var pkBuf, vkBuf bytes.Buffer
	assert.NoError(t, keys.WriteKeys(&pkBuf, &vkBuf))

	loaded, err := ReadKeys(bytes.NewReader(pkBuf.Bytes()), bytes.NewReader(vkBuf.Bytes()))
	assert.NoError(t, err)

	asn, err := cs.Solve([]fr.Element{field.FromUint64(2)}, []fr.Element{field.FromUint64(3)})
	assert.NoError(t, err)
	proof, err := sys.Prove(loaded, asn)
	assert.NoError(t, err)
	assert.NoError(t, sys.Verify(loaded.VK, proof, asn.PublicVector()))
}

func TestReadKeysGarbage(t *testing.T) {
	_, err := ReadKeys(bytes.NewReader([]byte("garbage")), bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrKeyLoad))
	_, err = ReadVerifyingKey(bytes.NewReader([]byte("garbage")))
	assert.True(t, errors.Is(err, ErrKeyLoad))
}

func TestSignature(t *testing.T) {
	key, err := GenerateKey(rand.Reader)
	assert.NoError(t, err)

	msg := field.FromUint64(123456)
	sig, err := SignMessage(key, msg)
	assert.NoError(t, err)

	x, y := PublicKeyCoords(key.PublicKey)
	assert.NoError(t, VerifySignature(x, y, msg, sig))

	// a different message must not verify
	err = VerifySignature(x, y, field.FromUint64(654321), sig)
	assert.True(t, errors.Is(err, ErrSignature))

	// nor a different key
	other, err := GenerateKey(rand.Reader)
	assert.NoError(t, err)
	ox, oy := PublicKeyCoords(other.PublicKey)
	err = VerifySignature(ox, oy, msg, sig)
	assert.True(t, errors.Is(err, ErrSignature))
}

func TestBundleJSONRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	cs := tinyCircuit().Finalize()
	sys, err := NewSystem(cs, testLog)
	assert.NoError(t, err)
	keys, err := sys.Setup()
	assert.NoError(t, err)

	asn, err := cs.Solve([]fr.Element{field.FromUint64(6)}, []fr.Element{field.FromUint64(7)})
	assert.NoError(t, err)
	proof, err := sys.Prove(keys, asn)
	assert.NoError(t, err)

	bundle := &Bundle{Proof: proof, Public: asn.PublicVector(), Signature: []byte{1, 2, 3}}
	data, err := json.Marshal(bundle)
	assert.NoError(t, err)

	var back Bundle
	assert.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, bundle.Public, back.Public)
	assert.Equal(t, bundle.Signature, back.Signature)
	assert.NoError(t, sys.Verify(keys.VK, back.Proof, back.Public))
}

func TestProvePool(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	cs := tinyCircuit().Finalize()
	sys, err := NewSystem(cs, testLog)
	assert.NoError(t, err)
	keys, err := sys.Setup()
	assert.NoError(t, err)

	var jobs []ProveJob
	for i := 1; i <= 4; i++ {
		asn, err := cs.Solve(
			[]fr.Element{field.FromUint64(uint64(i))},
			[]fr.Element{field.FromUint64(10)})
		assert.NoError(t, err)
		jobs = append(jobs, ProveJob{ID: fmt.Sprintf("job-%d", i), Assignment: asn})
	}

	pool := NewProvePool(sys, keys, 2, testLog)
	done := 0
	for res := range pool.Run(context.Background(), jobs) {
		assert.NoError(t, res.Err)
		assert.NoError(t, sys.Verify(keys.VK, res.Bundle.Proof, res.Bundle.Public))
		done++
	}
	assert.Equal(t, len(jobs), done)
}
