// Package main is the call event handler deployed behind the SIP media
// application. Every signaling event for every call invokes this
// function; it must always return a well-formed action list, because an
// error or a malformed body makes the control plane drop the call.
//
// Configuration is taken from the environment:
//
//	VOICEBRIDGE_STORE_DIR     session store directory (default /tmp/voicebridge)
//	VOICEBRIDGE_GREETING      inbound greeting text
//	VOICEBRIDGE_HOLD_MESSAGE  hold prompt text
//	VOICEBRIDGE_APOLOGY       failure prompt text
//	VOICEBRIDGE_VOICE_ID      speech synthesis voice
//	VOICEBRIDGE_ENDPOINT      static PSTN fallback number
//	VOICEBRIDGE_CALLER_ID     caller id for fallback bridging
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/haivivi/voicebridge/pkg/callfsm"
	"github.com/haivivi/voicebridge/pkg/session"
	"github.com/haivivi/voicebridge/pkg/sma"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	storeDir := os.Getenv("VOICEBRIDGE_STORE_DIR")
	if storeDir == "" {
		storeDir = "/tmp/voicebridge"
	}
	store, err := session.NewBadger(session.BadgerOptions{Dir: storeDir})
	if err != nil {
		logger.Error("session store unavailable", "dir", storeDir, "error", err)
		os.Exit(1)
	}

	machine := callfsm.New(callfsm.Config{
		Greeting:       os.Getenv("VOICEBRIDGE_GREETING"),
		HoldMessage:    os.Getenv("VOICEBRIDGE_HOLD_MESSAGE"),
		Apology:        os.Getenv("VOICEBRIDGE_APOLOGY"),
		VoiceID:        os.Getenv("VOICEBRIDGE_VOICE_ID"),
		BridgeEndpoint: os.Getenv("VOICEBRIDGE_ENDPOINT"),
		CallerID:       os.Getenv("VOICEBRIDGE_CALLER_ID"),
	}, store, logger)

	lambda.Start(handler(machine, logger))
}

// handler wraps the state machine so that no panic or error ever
// surfaces to the control plane as a failed invocation.
func handler(machine *callfsm.Machine, logger *slog.Logger) func(context.Context, *sma.Event) (*sma.Response, error) {
	return func(ctx context.Context, ev *sma.Event) (resp *sma.Response, _ error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic", "panic", r,
					"transaction_id", ev.CallDetails.TransactionID)
				resp = safeResponse()
			}
		}()

		resp, err := machine.HandleEvent(ctx, ev)
		if err != nil {
			// The response is still usable; log and return it rather
			// than failing the invocation.
			logger.Error("event handling degraded",
				"transaction_id", ev.CallDetails.TransactionID, "error", err)
		}
		if resp == nil || resp.Validate() != nil {
			resp = safeResponse()
		}
		return resp, nil
	}
}

func safeResponse() *sma.Response {
	return sma.NewResponse(
		sma.Speak{Text: callfsm.DefaultHoldMessage},
		sma.Pause{DurationMs: 1000},
	)
}
