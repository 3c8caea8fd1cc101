package ascii_test

import (
	"errors"
	"testing"

	"i4.energy/across/motiongw/ascii"
)

func intp(n int) *int { return &n }

func TestParseReply(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ascii.ReplyMessage
	}{
		{
			name:  "Reply without message id",
			input: "@01 2 OK IDLE -- DONE\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 1,
				AxisNumber:    2,
				ReplyFlag:     "OK",
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Data:          "DONE",
			},
		},
		{
			name:  "Reply with message id",
			input: "@01 2 05 OK IDLE -- DONE\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 1,
				AxisNumber:    2,
				MessageID:     intp(5),
				ReplyFlag:     "OK",
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Data:          "DONE",
			},
		},
		{
			name:  "Reply with CRLF terminator",
			input: "@01 1 OK BUSY -- 551\r\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 1,
				AxisNumber:    1,
				ReplyFlag:     "OK",
				DeviceStatus:  "BUSY",
				WarningFlag:   "--",
				Data:          "551",
			},
		},
		{
			name:  "Reply with message id zero stays zero, not absent",
			input: "@01 0 00 RJ IDLE -- BADCOMMAND\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 1,
				AxisNumber:    0,
				MessageID:     intp(0),
				ReplyFlag:     "RJ",
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Data:          "BADCOMMAND",
			},
		},
		{
			name:  "Reply data keeps embedded whitespace",
			input: "@02 0 OK IDLE -- 0 0 0\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 2,
				AxisNumber:    0,
				ReplyFlag:     "OK",
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Data:          "0 0 0",
			},
		},
		{
			name:  "Info with empty data",
			input: "#01 0 \n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeInfo,
				DeviceAddress: 1,
				AxisNumber:    0,
			},
		},
		{
			name:  "Info with data",
			input: "#01 0 some info\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeInfo,
				DeviceAddress: 1,
				AxisNumber:    0,
				Data:          "some info",
			},
		},
		{
			name:  "Info with message id",
			input: "#12 3 47 firmware rev 6999\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeInfo,
				DeviceAddress: 12,
				AxisNumber:    3,
				MessageID:     intp(47),
				Data:          "firmware rev 6999",
			},
		},
		{
			name:  "Alert without message id",
			input: "!01 0 IDLE --\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeAlert,
				DeviceAddress: 1,
				AxisNumber:    0,
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
			},
		},
		{
			name:  "Alert with message id",
			input: "!01 0 09 BUSY WR\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeAlert,
				DeviceAddress: 1,
				AxisNumber:    0,
				MessageID:     intp(9),
				DeviceStatus:  "BUSY",
				WarningFlag:   "WR",
			},
		},
		{
			name:  "Alert with data",
			input: "!03 1 IDLE FD driver disabled\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeAlert,
				DeviceAddress: 3,
				AxisNumber:    1,
				DeviceStatus:  "IDLE",
				WarningFlag:   "FD",
				Data:          "driver disabled",
			},
		},
		{
			name:  "Alert id only read when field count allows it",
			input: "!01 2 99 88\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeAlert,
				DeviceAddress: 1,
				AxisNumber:    2,
				DeviceStatus:  "99",
				WarningFlag:   "88",
			},
		},
		{
			name:  "Reply with valid checksum",
			input: "@01 2 OK IDLE -- DONE:EC\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeReply,
				DeviceAddress: 1,
				AxisNumber:    2,
				ReplyFlag:     "OK",
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Data:          "DONE",
				Checksum:      "EC",
			},
		},
		{
			name:  "Alert with valid checksum",
			input: "!01 0 IDLE --:EA\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeAlert,
				DeviceAddress: 1,
				AxisNumber:    0,
				DeviceStatus:  "IDLE",
				WarningFlag:   "--",
				Checksum:      "EA",
			},
		},
		{
			name:  "Info with empty data and checksum",
			input: "#05 0 :CA\n",
			expected: ascii.ReplyMessage{
				Type:          ascii.TypeInfo,
				DeviceAddress: 5,
				AxisNumber:    0,
				Checksum:      "CA",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ascii.ParseReply(tt.input)
			if err != nil {
				t.Fatalf("ParseReply(%q) returned error: %v", tt.input, err)
			}
			assertEqualMessage(t, got, &tt.expected)
		})
	}
}

func TestParseReplyErrors(t *testing.T) {
	t.Run("ErrTooShort on short input", func(t *testing.T) {
		for _, input := range []string{"", "\n", "@1", "@\r\n"} {
			if _, err := ascii.ParseReply(input); !errors.Is(err, ascii.ErrTooShort) {
				t.Errorf("ParseReply(%q): expected ErrTooShort, got: %v", input, err)
			}
		}
	})

	t.Run("ChecksumError on corrupted checksum", func(t *testing.T) {
		msg, err := ascii.ParseReply("@01 2 OK IDLE -- DONE:ED\n")
		if msg != nil {
			t.Error("expected no message on checksum failure")
		}
		var cerr *ascii.ChecksumError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *ChecksumError, got: %v", err)
		}
		if cerr.Found != "ED" {
			t.Errorf("expected found checksum ED, got %q", cerr.Found)
		}
		if cerr.Expected != "EC" {
			t.Errorf("expected computed checksum EC, got %q", cerr.Expected)
		}
	})

	t.Run("ChecksumError on corrupted body", func(t *testing.T) {
		// Valid checksum for "-- DONE", body flipped to "WR DONE".
		_, err := ascii.ParseReply("@01 2 OK IDLE WR DONE:EC\n")
		var cerr *ascii.ChecksumError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *ChecksumError, got: %v", err)
		}
		if cerr.Expected != "E9" {
			t.Errorf("expected computed checksum E9, got %q", cerr.Expected)
		}
	})

	t.Run("MalformedError on insufficient reply fields", func(t *testing.T) {
		for _, input := range []string{
			"@01\n", // insufficient fields for a reply
			"@01 2 OK\n",
			"@01 2 OK IDLE\n",
			"@01 2 OK IDLE --\n", // reply data is required
			"!01 2 IDLE\n",
			"#01 0\n", // delimiter after axis is required even for empty data
		} {
			_, err := ascii.ParseReply(input)
			var merr *ascii.MalformedError
			if !errors.As(err, &merr) {
				t.Errorf("ParseReply(%q): expected *MalformedError, got: %v", input, err)
			}
		}
	})

	t.Run("MalformedError carries the offending body", func(t *testing.T) {
		_, err := ascii.ParseReply("@01 2 OK\n")
		var merr *ascii.MalformedError
		if !errors.As(err, &merr) {
			t.Fatalf("expected *MalformedError, got: %v", err)
		}
		if merr.Type != ascii.TypeReply {
			t.Errorf("expected reply type in error, got %v", merr.Type)
		}
		if merr.Body != "@01 2 OK" {
			t.Errorf("expected offending body in error, got %q", merr.Body)
		}
	})

	t.Run("UnknownTypeError on unrecognized tag", func(t *testing.T) {
		_, err := ascii.ParseReply("$01 2 X\n")
		var uerr *ascii.UnknownTypeError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected *UnknownTypeError, got: %v", err)
		}
		if uerr.Tag != '$' {
			t.Errorf("expected tag '$', got %q", uerr.Tag)
		}
	})
}

func TestReplyEncode(t *testing.T) {
	t.Run("Round-trips parsed lines byte for byte", func(t *testing.T) {
		lines := []string{
			"@01 2 OK IDLE -- DONE\n",
			"@01 2 05 OK IDLE -- DONE\n",
			"@99 9 RJ BUSY WR 0 0 0\n",
			"#01 0 \n",
			"#01 0 some info\n",
			"#12 3 47 firmware rev 6999\n",
			"!01 0 IDLE --\n",
			"!01 0 09 BUSY WR\n",
			"!03 1 IDLE FD driver disabled\n",
			"@01 2 OK IDLE -- DONE:EC\n",
		}
		for _, line := range lines {
			msg, err := ascii.ParseReply(line)
			if err != nil {
				t.Fatalf("ParseReply(%q) returned error: %v", line, err)
			}
			if got := msg.Encode(); got != line {
				t.Errorf("Encode() = %q, want %q", got, line)
			}
		}
	})

	t.Run("Round-trips constructed messages structurally", func(t *testing.T) {
		messages := []*ascii.ReplyMessage{
			ascii.NewReply(1, 2, ascii.FlagOK, ascii.StatusIdle, "", "DONE"),
			ascii.NewReply(42, 0, ascii.FlagRejected, ascii.StatusBusy, "WR", "AGAIN"),
			ascii.NewAlert(7, 3, ascii.StatusIdle, ""),
			ascii.NewInfo(1, 0, "setting speed 153600"),
		}
		for _, want := range messages {
			got, err := ascii.ParseReply(want.Encode())
			if err != nil {
				t.Fatalf("ParseReply(Encode(%v)) returned error: %v", want, err)
			}
			assertEqualMessage(t, got, want)
		}
	})

	t.Run("Stored checksum is reproduced verbatim, never recomputed", func(t *testing.T) {
		msg, err := ascii.ParseReply("@01 2 OK IDLE -- DONE:EC\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Mutating a field leaves the stored checksum alone. The encoded
		// line carries the stale checksum, so decoding it again reports a
		// mismatch rather than silently accepting the edit.
		msg.Data = "HALTED"
		line := msg.Encode()
		if line != "@01 2 OK IDLE -- HALTED:EC\n" {
			t.Errorf("unexpected encoded line: %q", line)
		}
		var cerr *ascii.ChecksumError
		if _, err := ascii.ParseReply(line); !errors.As(err, &cerr) {
			t.Errorf("expected stale checksum to be rejected, got: %v", err)
		}
	})

	t.Run("String is an alias for Encode", func(t *testing.T) {
		msg := ascii.NewReply(1, 2, ascii.FlagOK, ascii.StatusIdle, "", "DONE")
		if msg.String() != msg.Encode() {
			t.Errorf("String() = %q, Encode() = %q", msg.String(), msg.Encode())
		}
	})
}

// assertEqualMessage compares every field, keeping the nil/zero message id
// distinction.
func assertEqualMessage(t *testing.T, got, want *ascii.ReplyMessage) {
	t.Helper()
	if got.Type != want.Type {
		t.Errorf("Type = %v, want %v", got.Type, want.Type)
	}
	if got.DeviceAddress != want.DeviceAddress {
		t.Errorf("DeviceAddress = %d, want %d", got.DeviceAddress, want.DeviceAddress)
	}
	if got.AxisNumber != want.AxisNumber {
		t.Errorf("AxisNumber = %d, want %d", got.AxisNumber, want.AxisNumber)
	}
	switch {
	case got.MessageID == nil && want.MessageID != nil:
		t.Errorf("MessageID = nil, want %d", *want.MessageID)
	case got.MessageID != nil && want.MessageID == nil:
		t.Errorf("MessageID = %d, want nil", *got.MessageID)
	case got.MessageID != nil && want.MessageID != nil && *got.MessageID != *want.MessageID:
		t.Errorf("MessageID = %d, want %d", *got.MessageID, *want.MessageID)
	}
	if got.ReplyFlag != want.ReplyFlag {
		t.Errorf("ReplyFlag = %q, want %q", got.ReplyFlag, want.ReplyFlag)
	}
	if got.DeviceStatus != want.DeviceStatus {
		t.Errorf("DeviceStatus = %q, want %q", got.DeviceStatus, want.DeviceStatus)
	}
	if got.WarningFlag != want.WarningFlag {
		t.Errorf("WarningFlag = %q, want %q", got.WarningFlag, want.WarningFlag)
	}
	if got.Data != want.Data {
		t.Errorf("Data = %q, want %q", got.Data, want.Data)
	}
	if got.Checksum != want.Checksum {
		t.Errorf("Checksum = %q, want %q", got.Checksum, want.Checksum)
	}
}
