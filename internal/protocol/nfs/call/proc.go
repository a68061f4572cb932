// Package call models a single NFSv3 procedure call as a self-describing
// message that can be decoded from an incoming RPC stream or encoded for an
// outgoing one.
//
// Every procedure implements ProcedureCall and embeds an Envelope, which owns
// the transaction id, credentials and the RPC call header. A procedure only
// knows how to size, read and write its own argument section; header framing
// is always produced by Envelope.Serialize.
//
// Direction is chosen once per call: NewStage returns an Inbound stage that
// decodes argument bytes, or an Outbound stage that emits the framed call as
// a single write.
package call

import "fmt"

// Proc is an NFSv3 procedure number (RFC 1813 section 3.3).
type Proc uint32

const (
	ProcNull        Proc = 0
	ProcGetattr     Proc = 1
	ProcSetattr     Proc = 2
	ProcLookup      Proc = 3
	ProcAccess      Proc = 4
	ProcReadlink    Proc = 5
	ProcRead        Proc = 6
	ProcWrite       Proc = 7
	ProcCreate      Proc = 8
	ProcMkdir       Proc = 9
	ProcSymlink     Proc = 10
	ProcMknod       Proc = 11
	ProcRemove      Proc = 12
	ProcRmdir       Proc = 13
	ProcRename      Proc = 14
	ProcLink        Proc = 15
	ProcReaddir     Proc = 16
	ProcReaddirplus Proc = 17
	ProcFsstat      Proc = 18
	ProcFsinfo      Proc = 19
	ProcPathconf    Proc = 20
	ProcCommit      Proc = 21
)

var procNames = [...]string{
	"NULL", "GETATTR", "SETATTR", "LOOKUP", "ACCESS", "READLINK", "READ",
	"WRITE", "CREATE", "MKDIR", "SYMLINK", "MKNOD", "REMOVE", "RMDIR",
	"RENAME", "LINK", "READDIR", "READDIRPLUS", "FSSTAT", "FSINFO",
	"PATHCONF", "COMMIT",
}

func (p Proc) String() string {
	if int(p) < len(procNames) {
		return procNames[p]
	}
	return fmt.Sprintf("PROC_%d", uint32(p))
}

// ParseProc resolves a procedure by its upper-case name.
func ParseProc(name string) (Proc, error) {
	for i, n := range procNames {
		if n == name {
			return Proc(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProcedure, name)
}
