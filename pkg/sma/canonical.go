package sma

import "strings"

// JoinHeaders is the canonical form of the join metadata that may ride on
// an event's header or argument maps.
type JoinHeaders struct {
	MeetingID  string
	JoinToken  string
	AttendeeID string
}

// Empty reports whether no join field was found.
func (j JoinHeaders) Empty() bool {
	return j.MeetingID == "" && j.JoinToken == "" && j.AttendeeID == ""
}

// Complete reports whether the metadata is sufficient to join a meeting.
// A meeting id without a join token is not joinable.
func (j JoinHeaders) Complete() bool {
	return j.MeetingID != "" && j.JoinToken != ""
}

// canonicalKey folds a header name to its alias-free form: lower-cased,
// with separators removed and a single leading "x" prefix stripped, so
// "X-Meeting-Id", "MeetingId" and "MEETING_ID" all become "meetingid".
func canonicalKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		switch r {
		case '-', '_', ' ':
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	s := b.String()
	// "x" custom-header prefix, but not words that merely start with x.
	if rest, ok := strings.CutPrefix(s, "x"); ok {
		switch rest {
		case "meetingid", "jointoken", "attendeeid":
			return rest
		}
	}
	return s
}

// ExtractJoinHeaders probes the given maps, in order, for join metadata
// under any known alias. Later maps never override a field already found:
// the most authoritative source goes first.
func ExtractJoinHeaders(maps ...map[string]string) JoinHeaders {
	var j JoinHeaders
	for _, m := range maps {
		for k, v := range m {
			if v == "" {
				continue
			}
			switch canonicalKey(k) {
			case "meetingid":
				if j.MeetingID == "" {
					j.MeetingID = v
				}
			case "jointoken":
				if j.JoinToken == "" {
					j.JoinToken = v
				}
			case "attendeeid":
				if j.AttendeeID == "" {
					j.AttendeeID = v
				}
			}
		}
	}
	return j
}

// JoinHeadersFromEvent probes every map an event can carry join metadata
// in: SIP headers, application arguments, then transaction attributes.
func JoinHeadersFromEvent(e *Event) JoinHeaders {
	return ExtractJoinHeaders(
		e.CallDetails.SipHeaders,
		e.CallDetails.Arguments,
		e.CallDetails.TransactionAttributes,
	)
}
