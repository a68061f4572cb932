// Package capture persists decoded procedure calls so they can be listed
// after the trace server has stopped.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("capture store closed")

// Record is one captured call.
type Record struct {
	ID           string    `json:"id" yaml:"id"`
	ConnectionID string    `json:"connection_id" yaml:"connection_id"`
	ClientAddr   string    `json:"client_addr" yaml:"client_addr"`
	XID          uint32    `json:"xid" yaml:"xid"`
	Proc         string    `json:"proc" yaml:"proc"`
	Target       string    `json:"target,omitempty" yaml:"target,omitempty"`
	Name         string    `json:"name,omitempty" yaml:"name,omitempty"`
	Time         time.Time `json:"time" yaml:"time"`
}

// Store is implemented by capture backends.
type Store interface {
	// Put assigns an ID (when empty) and persists r.
	Put(ctx context.Context, r *Record) error

	// List returns up to limit records, newest first. A limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close() error
}

// NewRecord builds a record from a decoded call.
func NewRecord(c call.ProcedureCall, connectionID, clientAddr string) *Record {
	r := &Record{
		ConnectionID: connectionID,
		ClientAddr:   clientAddr,
		XID:          c.Env().XID,
		Proc:         c.Proc().String(),
		Time:         time.Now().UTC(),
	}
	if t := c.Target(); t != nil {
		r.Target = t.String()
	}
	if d, ok := c.(call.DirOp); ok {
		r.Name = d.Entry().Name
	}
	return r
}

// newID returns a UUIDv7, whose string form sorts by creation time.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
