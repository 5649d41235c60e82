package ssi

import (
	"errors"
	"flag"
	"os"
	"testing"

	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

var testCfg = wrapper.Config{
	Key:      "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c",
	FileName: "ssi_wallet_test",
	FilePath: ".",
}

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("stderrthreshold", "WARNING"))
	try.To(flag.Set("v", "0"))
	flag.Parse()
}

func tearDown() {
	os.RemoveAll(testCfg.FilePath + "/" + testCfg.FileName + ".bolt")
	os.RemoveAll(testCfg.FilePath + "/" + testCfg.FileName + ".bolt_backup")
}

const seed = "000000000000000000000000Steward1"

func TestWallet_CreateAndStoreMyDID(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := NewMemWallet()
	did, verkey, err := w.CreateAndStoreMyDID(seed)
	assert.NoError(err)
	assert.Equal(did, "Th7MpTaRZVRYnPiabds81Y")
	assert.Equal(verkey, "FYmoFw55GeQH7SRFa37dkx1d2dZ3zUF8ckg7wmL7ofN4")
	assert.That(w.Has(verkey))

	did2, verkey2, err := w.CreateAndStoreMyDID("")
	assert.NoError(err)
	assert.NotEqual(did, did2)
	assert.NotEqual(verkey, verkey2)
	assert.SLen(w.MyDIDs(), 2)

	_, _, err = w.CreateAndStoreMyDID("too short")
	assert.Error(err)
	assert.That(errors.Is(err, core.ErrInvalidOption))
}

func TestWallet_SignVerify(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := NewMemWallet()
	_, verkey, err := w.CreateAndStoreMyDID("")
	assert.NoError(err)

	data := []byte("message to sign")
	sig, err := w.Sign(verkey, data)
	assert.NoError(err)
	assert.SLen(sig, 64)

	ok, err := w.Verify(verkey, data, sig)
	assert.NoError(err)
	assert.That(ok)

	ok, err = w.Verify(verkey, []byte("other"), sig)
	assert.NoError(err)
	assert.ThatNot(ok)

	_, err = w.Verify("not a verkey!", data, sig)
	assert.That(errors.Is(err, core.ErrInvalidVerkey))

	_, err = w.Sign("6QSduYdf8Bi6t8PfNm5vNomGWDtXhmMmTRzaciudBXYJ", data)
	assert.That(errors.Is(err, core.ErrInvalidVerkey))
}

func TestWallet_Persistent(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := NewWallet(testCfg)
	assert.NoError(w.Open())
	did, verkey, err := w.CreateAndStoreMyDID("")
	assert.NoError(err)
	assert.NoError(w.Close())

	w2 := NewWallet(testCfg)
	assert.NoError(w2.Open())
	defer func() { assert.NoError(w2.Close()) }()

	assert.That(w2.Has(verkey))
	vk, ok := w2.VerkeyOf(did)
	assert.That(ok)
	assert.Equal(vk, verkey)

	key, err := w2.SigningKey(verkey)
	assert.NoError(err)
	assert.SLen(key, 64)

	sig, err := w2.Sign(verkey, []byte("data"))
	assert.NoError(err)
	ok, err = Verify(verkey, []byte("data"), sig)
	assert.NoError(err)
	assert.That(ok)
}
