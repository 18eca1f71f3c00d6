package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicebridge/pkg/bridge"
	"github.com/haivivi/voicebridge/pkg/realtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the media bridge server",
	Long: `Run the WebSocket media server that bridges telephony audio
to the realtime AI service. Telephony connects to /media with the call
id and audio format in the query string.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.Realtime.URL == "" {
		return errors.New("config: realtime.url is required for serve")
	}

	aiFormat := bridge.Format{
		Encoding:     bridge.Encoding(cfg.Realtime.Encoding),
		SampleRateHz: cfg.Realtime.SampleRateHz,
	}
	client := realtime.NewClient(cfg.Realtime.URL, cfg.Realtime.Key(),
		realtime.WithLogger(logger))
	sessionCfg := &realtime.SessionConfig{
		Model:             cfg.Realtime.Model,
		Voice:             cfg.Realtime.Voice,
		Instructions:      cfg.Realtime.Instructions,
		Modalities:        []string{"audio", "text"},
		InputAudioFormat:  cfg.Realtime.Encoding,
		OutputAudioFormat: cfg.Realtime.Encoding,
		TurnDetection:     realtime.ServerVAD(),
	}

	dial := func(ctx context.Context, callID string) (bridge.AIStream, error) {
		sess, err := client.Dial(ctx, sessionCfg)
		if err != nil {
			return nil, err
		}
		// Open the conversation so the caller hears speech before the
		// first model turn.
		if greeting := cfg.Call.Greeting; greeting != "" {
			if err := sess.SendText(greeting); err != nil {
				sess.Close()
				return nil, err
			}
			if err := sess.CreateResponse(""); err != nil {
				sess.Close()
				return nil, err
			}
		}
		return sess, nil
	}
	server, err := bridge.NewServer(cfg.BridgeSecret, aiFormat, dial, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/media", server)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d\n", server.ActiveCalls())
	})

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("media server listening", "addr", cfg.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	server.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}
