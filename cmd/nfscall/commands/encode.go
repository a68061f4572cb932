package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

var (
	encodeFlags  callFlags
	encodeHex    bool
	encodeRecord bool
	encodeOut    string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <procedure>",
	Short: "Encode an NFSv3 call message",
	Long: `Encode builds a complete RPC call message for an NFSv3 procedure.

The message is written raw to stdout or --out. Use --hex for a readable
dump and --record to prepend the TCP record mark.

Examples:
  # REMOVE "report.txt" from a directory, as hex
  nfscall encode remove --xid 42 --dir-text AAAAAAAAAAAAAAAA --name report.txt --hex

  # Same call with AUTH_UNIX credentials, record-marked, into a file
  nfscall encode remove --dir 0a0b0c0d --name old.log --unix --uid 1000 --gid 1000 --record --out call.bin`,
	Args: procArgs,
	RunE: runEncode,
}

func init() {
	encodeFlags.register(encodeCmd)
	encodeCmd.Flags().BoolVar(&encodeHex, "hex", false, "write the message as hex text")
	encodeCmd.Flags().BoolVar(&encodeRecord, "record", false, "prepend the TCP record mark")
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "O", "", "output file (default: stdout)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	c, err := encodeFlags.build(cmd, args[0])
	if err != nil {
		return err
	}

	msg, err := call.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Proc(), err)
	}
	if encodeRecord {
		msg = rpc.AddRecordMark(msg, true)
	}
	logger.Debug("Encoded call", logger.XID(c.Env().XID), logger.Procedure(c.Proc().String()), logger.Bytes(len(msg)))

	out := msg
	if encodeHex {
		out = []byte(hex.EncodeToString(msg) + "\n")
	}

	if encodeOut != "" {
		if err := os.WriteFile(encodeOut, out, 0644); err != nil {
			return fmt.Errorf("write %s: %w", encodeOut, err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
