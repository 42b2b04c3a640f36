package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	rpcURL     string
	rpcTimeout time.Duration
)

// rpcCmd calls a method on a running server
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call a JSON-RPC method on a running server",
	Long: `Send one JSON-RPC request to a running bountyd and print the result.

Examples:
  bountyd rpc server_info
  bountyd rpc escrow_info '{"escrow":"9A2F..."}'
  bountyd rpc submit "{\"tx_json\": $(cat signed.json)}"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRPC,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.Flags().StringVar(&rpcURL, "url", "", "server URL (default: rpc address from the configuration)")
	rpcCmd.Flags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")
}

func runRPC(cmd *cobra.Command, args []string) error {
	url := rpcURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url = "http://" + cfg.RPCAddress()
	}

	request := map[string]interface{}{"method": args[0]}
	if len(args) == 2 {
		var params json.RawMessage
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("params must be a JSON object: %w", err)
		}
		request["params"] = []json.RawMessage{params}
	}

	result, err := callRPC(cmd.Context(), url, request)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func callRPC(ctx context.Context, url string, request interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: rpcTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc request failed: %s: %s", resp.Status, bytes.TrimSpace(data))
	}

	var decoded struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("invalid rpc response: %w", err)
	}
	return decoded.Result, nil
}

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
