package database

import (
	"fmt"
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/common"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	DATABASE_FILE    = "%s_reconciler.db"
	PROPOSALS_BUCKET = "proposals"
	OUTCOMES_BUCKET  = "outcomes"
)

// OutcomeRecord is the persisted result of one submission attempt.
type OutcomeRecord struct {
	TxId       string
	Sender     string
	Recipient  string
	Amount     uint64
	Rank       int
	Reason     string
	Status     string
	Hash       string
	Error      string
	RecordedAt int64
}

type Database struct {
	innerDb *bolt.DB
}

func DatabaseFileName(dir string, id string) string {
	return filepath.Join(dir, fmt.Sprintf(DATABASE_FILE, id))
}

func ExistsDatabaseFile(dir string, id string) bool {
	return common.ExistFile(DatabaseFileName(dir, id))
}

func Open(dir string, id string) (Database, error) {
	if ExistsDatabaseFile(dir, id) {
		log.Printf("found existing database for id: %s\n", id)
	}

	db, err := bolt.Open(
		DatabaseFileName(dir, id), 0600, &bolt.Options{Timeout: time.Second},
	)
	if err != nil {
		return Database{}, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(PROPOSALS_BUCKET))
		if err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists([]byte(OUTCOMES_BUCKET))
		return err
	})
	if err != nil {
		db.Close()
		return Database{}, err
	}
	return Database{db}, nil
}

func (db *Database) Close() error {
	return db.innerDb.Close()
}

func (db *Database) PutProposal(block *blocks.Block) error {
	return db.innerDb.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(PROPOSALS_BUCKET))
		enc, err := common.Encode(block)
		if err != nil {
			return err
		}
		return b.Put([]byte(block.TxId()), enc)
	})
}

func (db *Database) DeleteProposal(txId string) error {
	return db.innerDb.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(PROPOSALS_BUCKET))
		return b.Delete([]byte(txId))
	})
}

func (db *Database) GetAllProposals() ([]blocks.Block, error) {
	var proposals []blocks.Block
	err := db.innerDb.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(PROPOSALS_BUCKET))
		return b.ForEach(func(k, v []byte) error {
			block, err := common.Decode[blocks.Block](v)
			if err != nil {
				return fmt.Errorf("decoding proposal %s: %w", k, err)
			}
			proposals = append(proposals, *block)
			return nil
		})
	})
	return proposals, err
}

// ReplaceResidual swaps the stored proposal set for the given one atomically.
func (db *Database) ReplaceResidual(residual []blocks.Block) error {
	return db.innerDb.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(PROPOSALS_BUCKET))
		if err != nil {
			return err
		}
		b, err := tx.CreateBucket([]byte(PROPOSALS_BUCKET))
		if err != nil {
			return err
		}
		for i := range residual {
			enc, err := common.Encode(&residual[i])
			if err != nil {
				return err
			}
			err = b.Put([]byte(residual[i].TxId()), enc)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *Database) PutOutcome(record *OutcomeRecord) error {
	return db.innerDb.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(OUTCOMES_BUCKET))
		enc, err := common.Encode(record)
		if err != nil {
			return err
		}
		return b.Put([]byte(record.TxId), enc)
	})
}

func (db *Database) GetOutcome(txId string) (*OutcomeRecord, error) {
	var enc []byte
	err := db.innerDb.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(OUTCOMES_BUCKET))
		if v := b.Get([]byte(txId)); v != nil {
			enc = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if enc == nil {
		return nil, nil
	}
	return common.Decode[OutcomeRecord](enc)
}

func (db *Database) GetAllOutcomes() ([]OutcomeRecord, error) {
	var records []OutcomeRecord
	err := db.innerDb.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(OUTCOMES_BUCKET))
		return b.ForEach(func(k, v []byte) error {
			record, err := common.Decode[OutcomeRecord](v)
			if err != nil {
				return err
			}
			records = append(records, *record)
			return nil
		})
	})
	return records, err
}
