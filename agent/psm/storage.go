package psm

import (
	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	bucketPSM          = "psm"
	bucketPairwise     = "pairwise"
	bucketBasicMessage = "basic_message"
)

var buckets = []string{bucketPSM, bucketPairwise, bucketBasicMessage}

// Open opens the PSM database of the config. The buckets of the config are
// set here.
func Open(cfg wrapper.Config) (db *DB, err error) {
	defer err2.Handle(&err, "psm open %s", cfg.FileName)

	cfg.BucketIDs = buckets
	sp := wrapper.New(cfg)
	try.To(sp.Init())

	return &DB{
		sp:       sp,
		psm:      try.To1(sp.OpenStore(bucketPSM)),
		pairwise: try.To1(sp.OpenStore(bucketPairwise)),
		basicMsg: try.To1(sp.OpenStore(bucketBasicMessage)),
	}, nil
}
