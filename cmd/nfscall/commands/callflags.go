package commands

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

// callFlags are the flags shared by encode and send to describe one call.
type callFlags struct {
	xid     uint32
	dir     string
	dirText string
	name    string

	unix    bool
	uid     uint32
	gid     uint32
	gids    []uint
	machine string
}

func (f *callFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Uint32Var(&f.xid, "xid", 0, "transaction id (default: random)")
	fs.StringVar(&f.dir, "dir", "", "directory file handle, hex encoded")
	fs.StringVar(&f.dirText, "dir-text", "", "directory file handle given as raw text")
	fs.StringVar(&f.name, "name", "", "directory entry name")
	fs.BoolVar(&f.unix, "unix", false, "send AUTH_UNIX credentials instead of AUTH_NULL")
	fs.Uint32Var(&f.uid, "uid", 0, "AUTH_UNIX uid")
	fs.Uint32Var(&f.gid, "gid", 0, "AUTH_UNIX gid")
	fs.UintSliceVar(&f.gids, "gids", nil, "AUTH_UNIX supplementary gids")
	fs.StringVar(&f.machine, "machine", "", "AUTH_UNIX machine name (default: nfscall)")
	cmd.MarkFlagsMutuallyExclusive("dir", "dir-text")
}

// build creates an outgoing call for the procedure named procName. The xid
// is random unless --xid was given on cmd, zero included.
func (f *callFlags) build(cmd *cobra.Command, procName string) (call.ProcedureCall, error) {
	proc, err := call.ParseProc(strings.ToUpper(procName))
	if err != nil {
		return nil, err
	}

	env := call.Envelope{
		XID:       f.xid,
		Direction: call.Outgoing,
		Cred:      rpc.NullAuth(),
		Verf:      rpc.NullAuth(),
	}
	if !cmd.Flags().Changed("xid") {
		env.XID = rand.Uint32()
	}
	if f.unix {
		machine := f.machine
		if machine == "" {
			machine = "nfscall"
		}
		gids := make([]uint32, len(f.gids))
		for i, g := range f.gids {
			if uint64(g) > math.MaxUint32 {
				return nil, fmt.Errorf("--gids value %d does not fit in 32 bits", g)
			}
			gids[i] = uint32(g)
		}
		cred, err := (&rpc.UnixAuth{MachineName: machine, UID: f.uid, GID: f.gid, GIDs: gids}).OpaqueAuth()
		if err != nil {
			return nil, fmt.Errorf("build credentials: %w", err)
		}
		env.Cred = cred
	}

	c, err := call.DefaultRegistry().New(proc, env)
	if err != nil {
		return nil, err
	}

	d, ok := c.(call.DirOp)
	if !ok {
		if f.dir != "" || f.dirText != "" || f.name != "" {
			return nil, fmt.Errorf("%s takes no directory arguments", proc)
		}
		return c, nil
	}

	entry := d.Entry()
	entry.Name = f.name
	switch {
	case f.dirText != "":
		entry.Dir = call.FileHandle(f.dirText)
	case f.dir != "":
		h, err := hex.DecodeString(strings.TrimPrefix(f.dir, "0x"))
		if err != nil {
			return nil, fmt.Errorf("--dir must be hex: %w", err)
		}
		entry.Dir = h
	}
	return c, nil
}

// procArgs validates the procedure argument and lists known names in help.
func procArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one procedure (%s)", strings.Join(procNames(), ", "))
	}
	return nil
}

func procNames() []string {
	reg := call.DefaultRegistry()
	var names []string
	for _, p := range reg.Procs() {
		if d, ok := reg.Lookup(p); ok {
			names = append(names, strings.ToLower(d.Name))
		}
	}
	return names
}
