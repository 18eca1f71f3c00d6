package commands

import (
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/chimesdkmeetings"
	"github.com/aws/aws-sdk-go-v2/service/chimesdkvoice"
	"github.com/spf13/cobra"

	"github.com/haivivi/voicebridge/pkg/dialer"
)

var dialTo string

var dialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Place an outbound call into an AI meeting",
	Long: `Create a meeting and an attendee, then dial a phone number
through the SIP media application. When the callee answers, the call
handler joins the leg to the meeting using the stored session metadata.`,
	RunE: runDial,
}

func init() {
	dialCmd.Flags().StringVar(&dialTo, "to", "", "destination phone number (E.164)")
	dialCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(dialCmd)
}

func runDial(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("dial: load aws config: %w", err)
	}
	d, err := dialer.New(
		chimesdkmeetings.NewFromConfig(awsCfg),
		chimesdkvoice.NewFromConfig(awsCfg),
		store, cfg.Dialer, logger)
	if err != nil {
		return err
	}

	call, err := d.Dial(ctx, dialTo)
	if err != nil {
		// A half-built call leaves a meeting behind. Delete it so the
		// control plane does not accumulate orphans.
		var de *dialer.DialError
		if errors.As(err, &de) && de.MeetingID != "" {
			if cerr := d.CleanupMeeting(ctx, de.MeetingID); cerr != nil {
				logger.Warn("orphaned meeting not cleaned up", "meeting_id", de.MeetingID, "error", cerr)
			}
		}
		return err
	}

	fmt.Printf("transaction: %s\nmeeting:     %s\nattendee:    %s\n",
		call.TransactionID, call.MeetingID, call.AttendeeID)
	return nil
}
