package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/cli/output"
	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

var (
	decodeHex    bool
	decodeRecord bool
	decodeFormat string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file|-]",
	Short: "Decode NFSv3 call messages",
	Long: `Decode parses NFSv3 call messages and prints their contents.

Input is a single bare call message by default. With --record it is a TCP
stream of record-marked calls, as written by "encode --record" or captured
off the wire.

Examples:
  nfscall encode remove --xid 42 --dir-text AAAAAAAAAAAAAAAA --name report.txt --hex | nfscall decode --hex
  nfscall decode --record capture.bin -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "input is hex text")
	decodeCmd.Flags().BoolVar(&decodeRecord, "record", false, "input is a record-marked stream")
	decodeCmd.Flags().StringVarP(&decodeFormat, "output", "o", "table", "output format (table, json, yaml)")
}

// decodedCall is the printable form of one decoded call.
type decodedCall struct {
	XID       uint32 `json:"xid" yaml:"xid"`
	Procedure string `json:"procedure" yaml:"procedure"`
	Auth      string `json:"auth" yaml:"auth"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
}

type decodedCalls []decodedCall

func (d decodedCalls) Headers() []string {
	return []string{"XID", "PROCEDURE", "AUTH", "TARGET", "NAME"}
}

func (d decodedCalls) Rows() [][]string {
	rows := make([][]string, 0, len(d))
	for _, c := range d {
		rows = append(rows, []string{fmt.Sprintf("%d", c.XID), c.Procedure, c.Auth, c.Target, c.Name})
	}
	return rows
}

func newDecodedCall(c call.ProcedureCall) decodedCall {
	env := c.Env()
	d := decodedCall{
		XID:       env.XID,
		Procedure: c.Proc().String(),
		Auth:      rpc.AuthFlavorName(env.Cred.Flavor),
	}
	if u, err := env.UnixAuth(); err == nil && u != nil {
		d.Auth = u.String()
	}
	if t := c.Target(); t != nil {
		d.Target = t.String()
	}
	if op, ok := c.(call.DirOp); ok {
		d.Name = op.Entry().Name
	}
	return d
}

func runDecode(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(decodeFormat)
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(cmd.InOrStdin(), path, decodeHex)
	if err != nil {
		return err
	}

	msgs := [][]byte{data}
	if decodeRecord {
		if msgs, err = splitRecords(data); err != nil {
			return err
		}
	}

	calls := make(decodedCalls, 0, len(msgs))
	for i, msg := range msgs {
		c, err := call.Unmarshal(nil, msg)
		if err != nil {
			return fmt.Errorf("message %d: %w", i+1, err)
		}
		logger.Debug("Decoded call", logger.XID(c.Env().XID), logger.Procedure(c.Proc().String()))
		calls = append(calls, newDecodedCall(c))
	}

	return output.NewPrinter(cmd.OutOrStdout(), format).Print(calls)
}

func splitRecords(data []byte) ([][]byte, error) {
	r := bytes.NewReader(data)
	var msgs [][]byte
	for {
		rec, err := rpc.ReadRecord(r, rpc.MaxFragmentSize)
		if errors.Is(err, io.EOF) && r.Len() == 0 {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(msgs)+1, err)
		}
		msgs = append(msgs, rec)
	}
}
