package callfsm

import "time"

// Defaults applied by Config.withDefaults.
const (
	DefaultGreeting    = "Hello. Connecting you now, one moment please."
	DefaultHoldMessage = "Please hold while we connect your call."
	DefaultApology     = "We are having trouble connecting your call. Please stay on the line."

	DefaultBridgeTimeout = 45 * time.Second
	DefaultShortPause    = 500 * time.Millisecond
	DefaultLongPause     = 3 * time.Second
)

// Config carries the prompts and fallback routing the machine speaks and
// dials with. The zero value is usable; empty fields take the defaults
// above.
type Config struct {
	// Prompts.
	Greeting    string `yaml:"greeting"`
	HoldMessage string `yaml:"hold_message"`
	Apology     string `yaml:"apology"`

	// Speech synthesis parameters forwarded on every Speak action.
	VoiceID      string `yaml:"voice_id"`
	Engine       string `yaml:"engine"`
	LanguageCode string `yaml:"language_code"`

	// Static PSTN fallback. When BridgeEndpoint is set, failed or
	// unjoinable calls are bridged there instead of being parked on
	// hold prompts.
	BridgeEndpoint string        `yaml:"bridge_endpoint"`
	CallerID       string        `yaml:"caller_id"`
	BridgeTimeout  time.Duration `yaml:"bridge_timeout"`

	// HangupOnRepeatedFailure ends the call with a Hangup action once a
	// transaction has already consumed its single built-in retry. When
	// false the machine keeps the caller parked on apology prompts.
	HangupOnRepeatedFailure bool `yaml:"hangup_on_repeated_failure"`

	ShortPause time.Duration `yaml:"short_pause"`
	LongPause  time.Duration `yaml:"long_pause"`
}

func (c Config) withDefaults() Config {
	if c.Greeting == "" {
		c.Greeting = DefaultGreeting
	}
	if c.HoldMessage == "" {
		c.HoldMessage = DefaultHoldMessage
	}
	if c.Apology == "" {
		c.Apology = DefaultApology
	}
	if c.BridgeTimeout <= 0 {
		c.BridgeTimeout = DefaultBridgeTimeout
	}
	if c.ShortPause <= 0 {
		c.ShortPause = DefaultShortPause
	}
	if c.LongPause <= 0 {
		c.LongPause = DefaultLongPause
	}
	return c
}
