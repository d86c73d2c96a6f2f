// Package archive persists generated programs so that findings can be replayed after a campaign. Records are
// stored in a bbolt database keyed by their run ID, with CBOR-encoded values.
package archive

import (
	"path/filepath"
	"time"

	"github.com/crytic/solgen/logging"
	"github.com/crytic/solgen/utils"
	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// archiveFileName is the name of the database file inside the archive directory.
const archiveFileName = "solgen-archive.db"

// programsBucket is the bucket holding program records.
var programsBucket = []byte("programs")

// ProgramRecord describes one archived generation pass: the structured input it came from, the source it
// produced, and the test target metadata needed to replay it.
type ProgramRecord struct {
	// ID describes the generation pass's run ID.
	ID string `cbor:"id"`

	// InputData describes the encoded structured input the program was generated from.
	InputData []byte `cbor:"inputData"`

	// Source describes the rendered Solidity source.
	Source string `cbor:"source"`

	// TestContractName describes the concrete contract hosting the entry point.
	TestContractName string `cbor:"testContractName"`

	// TestMethodName describes the entry point's method signature name.
	TestMethodName string `cbor:"testMethodName"`

	// LibraryName describes the program's library, if any.
	LibraryName string `cbor:"libraryName"`

	// ExpectedReturn describes the literal the chosen target function returns.
	ExpectedReturn string `cbor:"expectedReturn"`

	// CreatedAt describes when the record was archived.
	CreatedAt time.Time `cbor:"createdAt"`
}

// Archive describes a persistent store of generated programs.
type Archive struct {
	// db describes the underlying bbolt database.
	db *bolt.DB

	// logger describes the archive's log object.
	logger *logging.Logger
}

// Open opens (or creates) the archive database inside the provided directory.
func Open(directory string) (*Archive, error) {
	if err := utils.MakeDirectory(directory); err != nil {
		return nil, errors.Wrapf(err, "could not create archive directory '%s'", directory)
	}

	db, err := bolt.Open(filepath.Join(directory, archiveFileName), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open archive database in '%s'", directory)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(programsBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "could not initialize archive database")
	}

	return &Archive{
		db:     db,
		logger: logging.GlobalLogger.NewSubLogger("module", "archive"),
	}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Put stores the provided record, overwriting any record with the same ID.
func (a *Archive) Put(record *ProgramRecord) error {
	encoded, err := cbor.Marshal(record, cbor.CanonicalEncOptions())
	if err != nil {
		return errors.Wrap(err, "could not encode program record")
	}
	err = a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(programsBucket).Put([]byte(record.ID), encoded)
	})
	if err != nil {
		return errors.Wrapf(err, "could not store program record '%s'", record.ID)
	}
	a.logger.Debug("archived program", "id", record.ID)
	return nil
}

// Get fetches the record with the provided ID. Returns nil if no such record exists.
func (a *Archive) Get(id string) (*ProgramRecord, error) {
	var encoded []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(programsBucket).Get([]byte(id)); value != nil {
			encoded = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}

	var record ProgramRecord
	if err = cbor.Unmarshal(encoded, &record); err != nil {
		return nil, errors.Wrapf(err, "could not decode program record '%s'", id)
	}
	// Timestamps are stored as Unix time and decode in the local zone; records are archived in UTC.
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// Walk invokes the provided callback for every archived record, in key order, until the callback returns false.
func (a *Archive) Walk(callback func(record *ProgramRecord) bool) error {
	err := a.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(programsBucket).ForEach(func(_ []byte, value []byte) error {
			var record ProgramRecord
			if err := cbor.Unmarshal(value, &record); err != nil {
				return err
			}
			if !callback(&record) {
				return errStopWalk
			}
			return nil
		})
	})
	if err == errStopWalk {
		return nil
	}
	return err
}

// errStopWalk signals an early, successful end of a Walk. It never escapes the package.
var errStopWalk = errors.New("walk stopped")
