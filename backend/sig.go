package backend

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// GenerateKey draws a fresh EdDSA key pair on BN254's twisted Edwards curve.
// The public key coordinates live in the circuit field, so they can be
// carried as owner-key witness values.
func GenerateKey(rand io.Reader) (*eddsa.PrivateKey, error) {
	key, err := eddsa.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("%w: keygen: %v", ErrSignature, err)
	}
	return key, nil
}

// PublicKeyCoords extracts the affine coordinates carried in the witness.
func PublicKeyCoords(pub eddsa.PublicKey) (x, y fr.Element) {
	return pub.A.X, pub.A.Y
}

// SignMessage signs the circuit's exported signature message.
func SignMessage(key *eddsa.PrivateKey, msg fr.Element) ([]byte, error) {
	b := msg.Bytes()
	sig, err := key.Sign(b[:], mimc.NewMiMC())
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %v", ErrSignature, err)
	}
	return sig, nil
}

// VerifySignature checks sig over the exported message against the owner key
// coordinates the proof exposes.
func VerifySignature(ownerX, ownerY, msg fr.Element, sig []byte) error {
	var pub eddsa.PublicKey
	pub.A.X = ownerX
	pub.A.Y = ownerY
	b := msg.Bytes()
	ok, err := pub.Verify(sig, b[:], mimc.NewMiMC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if !ok {
		return fmt.Errorf("%w: signature does not match owner key", ErrSignature)
	}
	return nil
}
