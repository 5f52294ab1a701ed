package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/pkg/logger"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const billsBucket = "bills"

// LocalStore keeps bill records in an embedded bbolt database and
// receipt files in a FileStorage. It implements the same Store contract
// as the remote API backend, for standalone and development runs.
type LocalStore struct {
	db    *bbolt.DB
	files FileStorage
}

func NewLocalStore(path string, files FileStorage) (*LocalStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(billsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bills bucket: %w", err)
	}

	return &LocalStore{db: db, files: files}, nil
}

func (s *LocalStore) Bills() BillsResource {
	return &localBills{store: s}
}

// Close closes the underlying database
func (s *LocalStore) Close() error {
	return s.db.Close()
}

type localBills struct {
	store *LocalStore
}

// List returns every bill owned by the given email, in key order.
func (r *localBills) List(ctx context.Context, email string) ([]model.Bill, error) {
	bills := make([]model.Bill, 0)
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(billsBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var bill model.Bill
			if err := json.Unmarshal(v, &bill); err != nil {
				return fmt.Errorf("unmarshaling bill %s: %w", k, err)
			}
			if bill.Email == email {
				bills = append(bills, bill)
			}
			return nil
		})
	})
	if err != nil {
		return nil, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	return bills, nil
}

// Create stores the receipt file and opens a pending draft record keyed
// by a fresh UUID.
func (r *localBills) Create(ctx context.Context, in CreateBillInput) (CreateBillResult, error) {
	key := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", in.Email, key, in.FileName)

	if err := r.store.files.Upload(ctx, objectName, in.File, in.Size, in.ContentType); err != nil {
		return CreateBillResult{}, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}

	fileURL, err := r.store.files.FileURL(ctx, objectName)
	if err != nil {
		return CreateBillResult{}, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}

	draft := model.Bill{
		ID:       key,
		Email:    in.Email,
		FileURL:  fileURL,
		FileName: in.FileName,
		Status:   model.StatusPending,
	}
	if err := r.store.put(&draft); err != nil {
		return CreateBillResult{}, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}

	if in.PreviousKey != "" {
		r.store.discardDraft(ctx, in.PreviousKey, in.Email)
	}

	return CreateBillResult{FileURL: fileURL, Key: key}, nil
}

// discardDraft removes the draft replaced by a re-staged receipt, along
// with its stored file. Only an incomplete draft owned by the same
// employee is removed; a submitted bill is never touched. Failures are
// logged, the new draft is already in place.
func (s *LocalStore) discardDraft(ctx context.Context, key, email string) {
	var prior model.Bill
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(billsBucket)).Get([]byte(key))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &prior)
	})
	if err != nil || prior.ID == "" || prior.Email != email || prior.Submittable() == nil {
		return
	}

	objectName := fmt.Sprintf("%s/%s/%s", prior.Email, prior.ID, prior.FileName)
	if err := s.files.Delete(ctx, objectName); err != nil {
		logger.Warn(ctx, "failed to delete replaced receipt file",
			"object", objectName,
			"error", err,
		)
	}
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(billsBucket)).Delete([]byte(key))
	}); err != nil {
		logger.Warn(ctx, "failed to delete replaced draft",
			"bill_id", key,
			"error", err,
		)
	}
}

// Update fills in the draft record created by a prior Create call.
func (r *localBills) Update(ctx context.Context, bill model.Bill) (model.Bill, error) {
	var exists bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket([]byte(billsBucket)).Get([]byte(bill.ID)) != nil
		return nil
	})
	if err != nil {
		return model.Bill{}, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	if !exists {
		return model.Bill{}, &StoreError{StatusCode: http.StatusNotFound, Message: "bill not found: " + bill.ID}
	}

	if bill.Status == "" {
		bill.Status = model.StatusPending
	}
	if err := r.store.put(&bill); err != nil {
		return model.Bill{}, &StoreError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	return bill, nil
}

func (s *LocalStore) put(bill *model.Bill) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(bill)
		if err != nil {
			return fmt.Errorf("marshaling bill: %w", err)
		}
		return tx.Bucket([]byte(billsBucket)).Put([]byte(bill.ID), data)
	})
}
