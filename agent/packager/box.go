package packager

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"github.com/teserakt-io/golang-ed25519/extra25519"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/box"
)

const curveKeySize = 32

type curveKey = [curveKeySize]byte

func publicToCurve(pub []byte) (*curveKey, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%d-byte key size is invalid", len(pub))
	}
	var in, out curveKey
	copy(in[:], pub)
	if !extra25519.PublicKeyToCurve25519(&out, &in) {
		return nil, errors.New("failed to convert public key")
	}
	return &out, nil
}

func secretToCurve(priv []byte) (*curveKey, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%d-byte private key size is invalid", len(priv))
	}
	var in [ed25519.PrivateKeySize]byte
	copy(in[:], priv)
	out := new(curveKey)
	extra25519.PrivateKeyToCurve25519(out, &in)
	return out, nil
}

// sealNonce is libsodium's crypto_box_seal nonce: blake2b(epk || rpk).
func sealNonce(epk, rpk []byte) (*[24]byte, error) {
	h, err := blake2b.New(24, nil)
	if err != nil {
		return nil, err
	}
	h.Write(epk)
	h.Write(rpk)
	var nonce [24]byte
	copy(nonce[:], h.Sum(nil))
	return &nonce, nil
}

// sealBox is crypto_box_seal: an anonymous box for the recipient.
func sealBox(msg []byte, recPub *curveKey, rand io.Reader) ([]byte, error) {
	epk, esk, err := box.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	nonce, err := sealNonce(epk[:], recPub[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, curveKeySize, curveKeySize+len(msg)+box.Overhead)
	copy(out, epk[:])
	return box.Seal(out, msg, nonce, recPub, esk), nil
}

// sealOpen is crypto_box_seal_open.
func sealOpen(msg []byte, recPub, recPriv *curveKey) ([]byte, error) {
	if len(msg) < curveKeySize+box.Overhead {
		return nil, errors.New("sealed box too short")
	}
	var epk curveKey
	copy(epk[:], msg[:curveKeySize])

	nonce, err := sealNonce(epk[:], recPub[:])
	if err != nil {
		return nil, err
	}
	out, ok := box.Open(nil, msg[curveKeySize:], nonce, &epk, recPriv)
	if !ok {
		return nil, errors.New("failed to open sealed box")
	}
	return out, nil
}
