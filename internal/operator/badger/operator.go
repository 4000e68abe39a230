// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package badger implements service.StateOperator on top of BadgerDB: every
// published state snapshot is persisted as a JSON blob keyed by service id,
// and TryLoad recovers the last snapshot on a service's next start.
//
// Grounded on the teacher's write-ahead-log persistence pattern
// (internal/wal/wal.go: JSON-encode, one Badger key per logical stream,
// Update/View transactions), trimmed to the simpler key-per-service-id
// shape a StateOperator needs instead of an append-only entry log.
package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// Open opens (or creates) a Badger database at path, configured for the
// embedded single-process use this operator assumes — no other process
// should ever hold the same path open concurrently, which is Badger's own
// constraint, not one this package adds.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // the teacher routes Badger's own logger through zerolog; callers that want that can set opts.Logger themselves before Open
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", path, err)
	}
	return db, nil
}

// Operator is a service.StateOperator that persists one JSON-encoded
// snapshot per service id. NewFactory below adapts this into a
// service.OperatorFactory bound to one id, for use in a service.Descriptor.
type Operator struct {
	db  *badger.DB
	key []byte

	// decode unmarshals a loaded snapshot into the same concrete type the
	// service publishes, so TryLoad can hand Init a real State value
	// instead of a map[string]any. A nil decode means TryLoad never
	// succeeds — the service always derives its initial state from
	// settings instead, which is a legitimate choice for any service that
	// doesn't need durable recovery.
	decode func(data []byte) (any, error)
}

// NewFactory returns a service.OperatorFactory bound to serviceID and
// decode, for use as a service.Descriptor's NewOperator.
func NewFactory(db *badger.DB, serviceID service.ID, decode func([]byte) (any, error)) service.OperatorFactory {
	return func(any) service.StateOperator {
		return &Operator{db: db, key: stateKey(serviceID), decode: decode}
	}
}

func stateKey(id service.ID) []byte {
	return []byte("ensemble:state:" + string(id))
}

// TryLoad reads the last persisted snapshot, if any.
func (o *Operator) TryLoad(_ context.Context, _ any) (any, bool, error) {
	if o.decode == nil {
		return nil, false, nil
	}

	var data []byte
	err := o.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(o.key)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			data = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		metrics.StateOperatorErrors.WithLabelValues(string(o.key), "load").Inc()
		return nil, false, fmt.Errorf("badger: load state %s: %w", o.key, err)
	}

	state, err := o.decode(data)
	if err != nil {
		metrics.StateOperatorErrors.WithLabelValues(string(o.key), "decode").Inc()
		return nil, false, fmt.Errorf("badger: decode state %s: %w", o.key, err)
	}
	return state, true, nil
}

// Run persists one state snapshot, overwriting whatever was there before.
func (o *Operator) Run(_ context.Context, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		metrics.StateOperatorErrors.WithLabelValues(string(o.key), "encode").Inc()
		return fmt.Errorf("badger: encode state %s: %w", o.key, err)
	}

	err = o.db.Update(func(txn *badger.Txn) error {
		return txn.Set(o.key, data)
	})
	if err != nil {
		metrics.StateOperatorErrors.WithLabelValues(string(o.key), "persist").Inc()
		return fmt.Errorf("badger: persist state %s: %w", o.key, err)
	}
	return nil
}
