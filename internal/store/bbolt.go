package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// Bucket names used in the bbolt database.
var (
	bucketMeta     = []byte("_meta")
	bucketLedger   = []byte("ledger")
	bucketLocks    = []byte("locks")
	bucketHoldings = []byte("holdings")
	bucketBalances = []byte("balances")
	bucketAssets   = []byte("assets")
	bucketEvents   = []byte("events")
	bucketNonces   = []byte("nonces")
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound       = errors.New("not found")
	ErrLedgerNotFound = fmt.Errorf("ledger %w", ErrNotFound)
	ErrLockNotFound   = fmt.Errorf("lock record %w", ErrNotFound)
	ErrAssetNotFound  = fmt.Errorf("asset %w", ErrNotFound)
	ErrAssetNotHeld   = fmt.Errorf("asset holding %w", ErrNotFound)

	ErrLockExists  = errors.New("lock record already exists")
	ErrAssetExists = errors.New("asset already exists")
)

const (
	metaKey       = "store_meta"
	ledgerKey     = "vault"
	schemaVersion = 1
)

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database at the given path and
// ensures all required buckets exist. The file is created with 0600 permissions.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{
			bucketMeta,
			bucketLedger,
			bucketLocks,
			bucketHoldings,
			bucketBalances,
			bucketAssets,
			bucketEvents,
			bucketNonces,
		} {
			if _, bErr := tx.CreateBucketIfNotExists(b); bErr != nil {
				return fmt.Errorf("create bucket %s: %w", b, bErr)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if meta.Get([]byte(metaKey)) != nil {
			return nil
		}
		data, mErr := json.Marshal(&Meta{
			Version:   schemaVersion,
			StoreID:   uuid.New().String(),
			CreatedAt: time.Now().UTC(),
		})
		if mErr != nil {
			return fmt.Errorf("marshal meta: %w", mErr)
		}
		return meta.Put([]byte(metaKey), data)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Meta returns the store metadata written on creation.
func (s *BoltStore) Meta() (*Meta, error) {
	var meta Meta
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get([]byte(metaKey))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// View runs fn in a read-only transaction.
func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update runs fn in a read-write transaction. bbolt allows one writer at a
// time, so fn observes and mutates state without interleaving.
func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// boltTx implements Tx on top of a bbolt transaction.
type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) getJSON(bucket []byte, key []byte, v any, notFound error) error {
	data := t.tx.Bucket(bucket).Get(key)
	if data == nil {
		return notFound
	}
	return json.Unmarshal(data, v)
}

func (t *boltTx) putJSON(bucket []byte, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	return t.tx.Bucket(bucket).Put(key, data)
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// GetLedger returns the vault ledger, or ErrLedgerNotFound before initialization.
func (t *boltTx) GetLedger() (*Ledger, error) {
	var ledger Ledger
	if err := t.getJSON(bucketLedger, []byte(ledgerKey), &ledger, ErrLedgerNotFound); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// PutLedger stores the vault ledger under its fixed key.
func (t *boltTx) PutLedger(ledger *Ledger) error {
	return t.putJSON(bucketLedger, []byte(ledgerKey), ledger)
}

// ---------------------------------------------------------------------------
// Lock records
// ---------------------------------------------------------------------------

// GetLock returns the lock record stored under key.
func (t *boltTx) GetLock(key string) (*LockRecord, error) {
	var rec LockRecord
	if err := t.getJSON(bucketLocks, []byte(key), &rec, ErrLockNotFound); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateLock stores a new lock record. It returns ErrLockExists if a record
// is already present under key.
func (t *boltTx) CreateLock(key string, rec *LockRecord) error {
	if t.tx.Bucket(bucketLocks).Get([]byte(key)) != nil {
		return ErrLockExists
	}
	return t.putJSON(bucketLocks, []byte(key), rec)
}

// DeleteLock removes the lock record stored under key.
func (t *boltTx) DeleteLock(key string) error {
	bucket := t.tx.Bucket(bucketLocks)
	if bucket.Get([]byte(key)) == nil {
		return ErrLockNotFound
	}
	return bucket.Delete([]byte(key))
}

// ListLocks returns up to limit active lock records in key order. A limit of
// zero or less returns all of them.
func (t *boltTx) ListLocks(limit int) ([]*LockRecord, error) {
	var locks []*LockRecord
	c := t.tx.Bucket(bucketLocks).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if limit > 0 && len(locks) >= limit {
			break
		}
		var rec LockRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, err
		}
		locks = append(locks, &rec)
	}
	return locks, nil
}

// CountLocks returns the number of active lock records.
func (t *boltTx) CountLocks() (int, error) {
	return t.tx.Bucket(bucketLocks).Stats().KeyN, nil
}

// ---------------------------------------------------------------------------
// Custody accounts
// ---------------------------------------------------------------------------

// AssetOwner returns the account currently holding the asset's single unit.
func (t *boltTx) AssetOwner(asset crypto.Address) (Account, error) {
	v := t.tx.Bucket(bucketHoldings).Get(asset[:])
	if v == nil {
		return "", ErrAssetNotHeld
	}
	return Account(v), nil
}

// SetAssetOwner records owner as the holder of asset.
func (t *boltTx) SetAssetOwner(asset crypto.Address, owner Account) error {
	return t.tx.Bucket(bucketHoldings).Put(asset[:], []byte(owner))
}

// ListHoldings returns every asset held by owner.
func (t *boltTx) ListHoldings(owner Account) ([]crypto.Address, error) {
	var assets []crypto.Address
	err := t.tx.Bucket(bucketHoldings).ForEach(func(k, v []byte) error {
		if Account(v) != owner {
			return nil
		}
		var a crypto.Address
		copy(a[:], k)
		assets = append(assets, a)
		return nil
	})
	return assets, err
}

// Balance returns the fungible balance of account. Unknown accounts hold zero.
func (t *boltTx) Balance(account Account) (uint64, error) {
	v := t.tx.Bucket(bucketBalances).Get([]byte(account))
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt balance for %s", account)
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetBalance overwrites the fungible balance of account.
func (t *boltTx) SetBalance(account Account, amount uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, amount)
	return t.tx.Bucket(bucketBalances).Put([]byte(account), buf)
}

// ---------------------------------------------------------------------------
// Asset metadata
// ---------------------------------------------------------------------------

// GetAsset returns the registry record for id.
func (t *boltTx) GetAsset(id crypto.Address) (*AssetRecord, error) {
	var rec AssetRecord
	if err := t.getJSON(bucketAssets, id[:], &rec, ErrAssetNotFound); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateAsset stores a new registry record, or returns ErrAssetExists.
func (t *boltTx) CreateAsset(rec *AssetRecord) error {
	if t.tx.Bucket(bucketAssets).Get(rec.ID[:]) != nil {
		return ErrAssetExists
	}
	return t.putJSON(bucketAssets, rec.ID[:], rec)
}

// PutAsset overwrites an existing registry record.
func (t *boltTx) PutAsset(rec *AssetRecord) error {
	if t.tx.Bucket(bucketAssets).Get(rec.ID[:]) == nil {
		return ErrAssetNotFound
	}
	return t.putJSON(bucketAssets, rec.ID[:], rec)
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// AppendEvent assigns the next sequence number to ev and appends it. The
// event becomes visible only if the surrounding transaction commits.
func (t *boltTx) AppendEvent(ev *Event) error {
	bucket := t.tx.Bucket(bucketEvents)
	seq, err := bucket.NextSequence()
	if err != nil {
		return fmt.Errorf("next event sequence: %w", err)
	}
	ev.Seq = seq
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return t.putJSON(bucketEvents, seqKey(seq), ev)
}

// ListEvents returns up to limit events with Seq greater than after, oldest first.
func (t *boltTx) ListEvents(after uint64, limit int) ([]*Event, error) {
	var events []*Event
	if after == math.MaxUint64 {
		return events, nil
	}
	c := t.tx.Bucket(bucketEvents).Cursor()
	for k, v := c.Seek(seqKey(after + 1)); k != nil; k, v = c.Next() {
		if limit > 0 && len(events) >= limit {
			break
		}
		var ev Event
		if err := json.Unmarshal(v, &ev); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, nil
}

// EventHead returns the sequence of the newest event, or zero when the log is empty.
func (t *boltTx) EventHead() (uint64, error) {
	k, _ := t.tx.Bucket(bucketEvents).Cursor().Last()
	if k == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint64(k), nil
}

// ---------------------------------------------------------------------------
// Nonces
// ---------------------------------------------------------------------------

// LastNonce returns the highest nonce accepted from id, or zero.
func (t *boltTx) LastNonce(id crypto.Address) (uint64, error) {
	v := t.tx.Bucket(bucketNonces).Get(id[:])
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt nonce for %s", id)
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetNonce records nonce as the highest accepted from id.
func (t *boltTx) SetNonce(id crypto.Address, nonce uint64) error {
	return t.tx.Bucket(bucketNonces).Put(id[:], seqKey(nonce))
}
