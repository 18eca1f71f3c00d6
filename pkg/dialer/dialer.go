package dialer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/chimesdkmeetings"
	"github.com/aws/aws-sdk-go-v2/service/chimesdkvoice"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/haivivi/voicebridge/pkg/session"
)

// MeetingsAPI is the meeting control plane subset the dialer uses.
type MeetingsAPI interface {
	CreateMeeting(ctx context.Context, in *chimesdkmeetings.CreateMeetingInput, opts ...func(*chimesdkmeetings.Options)) (*chimesdkmeetings.CreateMeetingOutput, error)
	CreateAttendee(ctx context.Context, in *chimesdkmeetings.CreateAttendeeInput, opts ...func(*chimesdkmeetings.Options)) (*chimesdkmeetings.CreateAttendeeOutput, error)
	DeleteMeeting(ctx context.Context, in *chimesdkmeetings.DeleteMeetingInput, opts ...func(*chimesdkmeetings.Options)) (*chimesdkmeetings.DeleteMeetingOutput, error)
}

// VoiceAPI is the telephony control plane subset the dialer uses.
type VoiceAPI interface {
	CreateSipMediaApplicationCall(ctx context.Context, in *chimesdkvoice.CreateSipMediaApplicationCallInput, opts ...func(*chimesdkvoice.Options)) (*chimesdkvoice.CreateSipMediaApplicationCallOutput, error)
}

// Config identifies the telephony application placing calls.
type Config struct {
	SipMediaApplicationID string `yaml:"sip_media_application_id"`
	FromNumber            string `yaml:"from_number"`
	MediaRegion           string `yaml:"media_region"`
}

func (c Config) validate() error {
	if c.SipMediaApplicationID == "" {
		return errors.New("dialer: sip media application id is required")
	}
	if c.FromNumber == "" {
		return errors.New("dialer: from number is required")
	}
	return nil
}

// Dialer places outbound calls.
type Dialer struct {
	meetings MeetingsAPI
	voice    VoiceAPI
	cfg      Config
	store    session.Store
	logger   *slog.Logger
}

// New wires a dialer. store may be nil when no correlation fallback is
// wanted.
func New(meetings MeetingsAPI, voice VoiceAPI, store session.Store, cfg Config, logger *slog.Logger) (*Dialer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dialer{meetings: meetings, voice: voice, cfg: cfg, store: store, logger: logger}, nil
}

// Call is the outcome of a successful Dial.
type Call struct {
	TransactionID string
	MeetingID     string
	AttendeeID    string
}

// Stages a DialError can report.
const (
	StageCreateMeeting  = "create_meeting"
	StageCreateAttendee = "create_attendee"
	StagePlaceCall      = "place_call"
	StageStoreSession   = "store_session"
)

// DialError carries the ids minted before the sequence failed, so the
// operator can delete the orphaned meeting.
type DialError struct {
	Stage      string
	MeetingID  string
	AttendeeID string
	Err        error
}

func (e *DialError) Error() string {
	if code := apiErrorCode(e.Err); code != "" {
		return fmt.Sprintf("dialer: %s: %s: %v", e.Stage, code, e.Err)
	}
	return fmt.Sprintf("dialer: %s: %v", e.Stage, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

func apiErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// Dial places a call to toNumber that joins a freshly created meeting
// when answered.
func (d *Dialer) Dial(ctx context.Context, toNumber string) (*Call, error) {
	if toNumber == "" {
		return nil, errors.New("dialer: destination number is required")
	}

	meeting, err := d.meetings.CreateMeeting(ctx, &chimesdkmeetings.CreateMeetingInput{
		ClientRequestToken: aws.String(uuid.New().String()),
		ExternalMeetingId:  aws.String("call-" + uuid.New().String()),
		MediaRegion:        aws.String(d.mediaRegion()),
	})
	if err != nil {
		return nil, &DialError{Stage: StageCreateMeeting, Err: err}
	}
	meetingID := aws.ToString(meeting.Meeting.MeetingId)

	attendee, err := d.meetings.CreateAttendee(ctx, &chimesdkmeetings.CreateAttendeeInput{
		MeetingId:      meeting.Meeting.MeetingId,
		ExternalUserId: aws.String("pstn-" + uuid.New().String()),
	})
	if err != nil {
		return nil, &DialError{Stage: StageCreateAttendee, MeetingID: meetingID, Err: err}
	}
	attendeeID := aws.ToString(attendee.Attendee.AttendeeId)
	joinToken := aws.ToString(attendee.Attendee.JoinToken)

	call, err := d.voice.CreateSipMediaApplicationCall(ctx, &chimesdkvoice.CreateSipMediaApplicationCallInput{
		FromPhoneNumber:       aws.String(d.cfg.FromNumber),
		ToPhoneNumber:         aws.String(toNumber),
		SipMediaApplicationId: aws.String(d.cfg.SipMediaApplicationID),
		SipHeaders: map[string]string{
			"X-Meeting-Id":  meetingID,
			"X-Join-Token":  joinToken,
			"X-Attendee-Id": attendeeID,
		},
		ArgumentsMap: map[string]string{
			"meeting_id":  meetingID,
			"join_token":  joinToken,
			"attendee_id": attendeeID,
		},
	})
	if err != nil {
		return nil, &DialError{Stage: StagePlaceCall, MeetingID: meetingID, AttendeeID: attendeeID, Err: err}
	}
	txID := aws.ToString(call.SipMediaApplicationCall.TransactionId)

	if d.store != nil {
		meta := session.Metadata{
			MeetingID:  meetingID,
			JoinToken:  joinToken,
			AttendeeID: attendeeID,
		}
		if err := d.store.Put(ctx, txID, meta); err != nil {
			return nil, &DialError{Stage: StageStoreSession, MeetingID: meetingID, AttendeeID: attendeeID, Err: err}
		}
	}

	d.logger.Info("outbound call placed",
		"transaction_id", txID, "meeting_id", meetingID, "attendee_id", attendeeID, "to", toNumber)
	return &Call{TransactionID: txID, MeetingID: meetingID, AttendeeID: attendeeID}, nil
}

// CleanupMeeting deletes a meeting minted by a failed Dial. Missing
// meetings are not an error.
func (d *Dialer) CleanupMeeting(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return nil
	}
	_, err := d.meetings.DeleteMeeting(ctx, &chimesdkmeetings.DeleteMeetingInput{
		MeetingId: aws.String(meetingID),
	})
	if err != nil && apiErrorCode(err) != "NotFoundException" {
		return fmt.Errorf("dialer: delete meeting %s: %w", meetingID, err)
	}
	return nil
}

func (d *Dialer) mediaRegion() string {
	if d.cfg.MediaRegion != "" {
		return d.cfg.MediaRegion
	}
	return "us-east-1"
}
