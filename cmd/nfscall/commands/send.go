package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/cli/output"
	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfscall/internal/telemetry"
)

var (
	sendFlags callFlags
	sendAddr  string
)

var sendCmd = &cobra.Command{
	Use:   "send <procedure>",
	Short: "Send an NFSv3 call and print the reply status",
	Long: `Send encodes an NFSv3 call, sends it over TCP and prints the RPC
reply status. The procedure result is not decoded; its size is reported.

The target defaults to server.listen from the configuration, so a local
"nfscall trace" server is reached without flags.

Examples:
  nfscall send remove --addr nfs.example.com:2049 --dir 0a0b0c0d --name old.log --unix --uid 1000
  nfscall send null`,
	Args: procArgs,
	RunE: runSend,
}

func init() {
	sendFlags.register(sendCmd)
	sendCmd.Flags().StringVar(&sendAddr, "addr", "", "server address host:port (default: server.listen)")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := sendFlags.build(cmd, args[0])
	if err != nil {
		return err
	}

	addr := sendAddr
	if addr == "" {
		addr = cfg.Server.Listen
	}
	maxReply, err := cfg.Client.MaxReplySize.Uint32()
	if err != nil {
		return fmt.Errorf("client.max_reply_size: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reply, elapsed, err := sendCall(ctx, &rpc.Client{Timeout: cfg.Client.Timeout, MaxReplySize: maxReply}, addr, c)
	if err != nil {
		return err
	}

	h := reply.Header
	status := rpc.AcceptStatName(h.AcceptStat)
	if !h.Accepted {
		status = fmt.Sprintf("DENIED (reject_stat %d)", h.RejectStat)
	}
	pairs := [][2]string{
		{"Server", addr},
		{"XID", fmt.Sprintf("%d", h.XID)},
		{"Procedure", c.Proc().String()},
		{"Status", status},
		{"Result", fmt.Sprintf("%d bytes", len(reply.Body))},
		{"Latency", elapsed.Round(time.Microsecond).String()},
	}
	if h.Accepted && h.AcceptStat == rpc.RPCProgMismatch {
		pairs = append(pairs, [2]string{"Versions", fmt.Sprintf("%d-%d", h.Low, h.High)})
	}
	return output.PrintKeyValues(cmd.OutOrStdout(), pairs)
}

func sendCall(ctx context.Context, client *rpc.Client, addr string, c call.ProcedureCall) (*rpc.Reply, time.Duration, error) {
	ctx, span := telemetry.StartCallSpan(ctx, telemetry.SpanClientCall, c.Env().XID, c.Proc().String())
	defer span.End()

	msg, err := call.Marshal(c, call.WithContext(ctx))
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, 0, fmt.Errorf("encode %s: %w", c.Proc(), err)
	}

	start := time.Now()
	reply, err := client.Call(ctx, addr, msg)
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, elapsed, fmt.Errorf("send %s to %s: %w", c.Proc(), addr, err)
	}

	logger.DebugCtx(ctx, "Reply received",
		logger.XID(reply.Header.XID),
		logger.Procedure(c.Proc().String()),
		logger.KeyStatus, rpc.AcceptStatName(reply.Header.AcceptStat),
		logger.KeyDurationMs, logger.Duration(start))
	return reply, elapsed, nil
}
